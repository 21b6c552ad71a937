package models

import (
	"database/sql"
	"time"
)

type Post struct {
	ID                 int64          `db:"id" json:"id"`
	UserID             int64          `db:"user_id" json:"user_id"`
	CampaignID         sql.NullInt64  `db:"campaign_id" json:"campaign_id"`
	MediaType          string         `db:"media_type" json:"media_type"`
	MediaURL           string         `db:"media_url" json:"media_url"`
	ThumbnailURL       string         `db:"thumbnail_url" json:"thumbnail_url"`
	Caption            string         `db:"caption" json:"caption"`
	Hashtags           []string       `db:"hashtags" json:"hashtags"`
	PromptUsed         string         `db:"prompt_used" json:"prompt_used"`
	GenerationMetadata map[string]any `db:"generation_metadata" json:"generation_metadata"`
	Status             string         `db:"status" json:"status"`
	RejectionNote      string         `db:"rejection_note" json:"rejection_note"`
	RegenerationCount  int            `db:"regeneration_count" json:"regeneration_count"`
	ScheduledFor       sql.NullTime   `db:"scheduled_for" json:"scheduled_for"`
	PostedAt           sql.NullTime   `db:"posted_at" json:"posted_at"`
	InstagramPostID    string         `db:"instagram_post_id" json:"instagram_post_id"`
	FacebookPostID     string         `db:"facebook_post_id" json:"facebook_post_id"`
	Likes              int64          `db:"likes" json:"likes"`
	Comments           int64          `db:"comments" json:"comments"`
	Shares             int64          `db:"shares" json:"shares"`
	Reach              int64          `db:"reach" json:"reach"`
	Impressions        int64          `db:"impressions" json:"impressions"`
	EngagementRate     float64        `db:"engagement_rate" json:"engagement_rate"`
	LastMetricsUpdate  sql.NullTime   `db:"last_metrics_update" json:"last_metrics_update"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

const (
	PostStatusPending   = "pending"
	PostStatusApproved  = "approved"
	PostStatusRejected  = "rejected"
	PostStatusScheduled = "scheduled"
	PostStatusPosted    = "posted"
	PostStatusFailed    = "failed"
)

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// PostMetrics carries one insights snapshot. Counters are overwritten on
// the post, never accumulated, so a refresh with unchanged provider data
// is a no-op.
type PostMetrics struct {
	Impressions int64
	Reach       int64
	Likes       int64
	Comments    int64
	Shares      int64
}
