package models

import "time"

// Campaign is a user's content-generation policy: a prompt template plus
// a weekly cadence. Campaigns are deactivated, never deleted, while posts
// still reference them.
type Campaign struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	Name           string    `db:"name" json:"name"`
	Description    string    `db:"description" json:"description"`
	PromptTemplate string    `db:"prompt_template" json:"prompt_template"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	PostsPerWeek   int       `db:"posts_per_week" json:"posts_per_week"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

const (
	DefaultCampaignName     = "Default Weekly Posts"
	DefaultCampaignTemplate = "Create engaging social media content for {brand_name} targeting {target_audience}"
	DefaultPostsPerWeek     = 7
)
