package queue

import "time"

const (
	TaskTypeGenerateUserWeek = "generation:user_week"
	TaskTypeGeneratePost     = "generation:post"
	TaskTypeRegeneratePost   = "generation:regenerate"
	TaskTypeScheduleApproved = "schedule:approved"
	TaskTypePublishPost      = "publish:post"
	TaskTypeRefreshMetrics   = "metrics:refresh"
	TaskTypeWeeklyDigest     = "notify:weekly_digest"
)

// GenerateUserWeekPayload fans out one user's weekly generation. WeekStart
// is the Monday-anchored UTC date identifying the cycle.
type GenerateUserWeekPayload struct {
	UserID    int64     `json:"user_id"`
	WeekStart time.Time `json:"week_start"`
}

type GeneratePostPayload struct {
	UserID             int64 `json:"user_id"`
	CampaignID         int64 `json:"campaign_id"`
	WeeklyGenerationID int64 `json:"weekly_generation_id"`
}

type RegeneratePostPayload struct {
	PostID        int64  `json:"post_id"`
	RejectionNote string `json:"rejection_note"`
}

type ScheduleApprovedPayload struct {
	UserID int64 `json:"user_id"`
}

type PublishPostPayload struct {
	PostID int64 `json:"post_id"`
}

type RefreshMetricsPayload struct {
	PostID int64 `json:"post_id"`
}

type WeeklyDigestPayload struct {
	UserID             int64 `json:"user_id"`
	WeeklyGenerationID int64 `json:"weekly_generation_id"`
}
