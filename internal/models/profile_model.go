package models

import "time"

type BusinessProfile struct {
	ID                 int64     `db:"id" json:"id"`
	UserID             int64     `db:"user_id" json:"user_id"`
	BrandName          string    `db:"brand_name" json:"brand_name"`
	BrandDescription   string    `db:"brand_description" json:"brand_description"`
	BrandVoice         string    `db:"brand_voice" json:"brand_voice"`
	BrandStyle         string    `db:"brand_style" json:"brand_style"`
	TargetAudience     string    `db:"target_audience" json:"target_audience"`
	Industry           string    `db:"industry" json:"industry"`
	ContentThemes      []string  `db:"content_themes" json:"content_themes"`
	HashtagPreferences []string  `db:"hashtag_preferences" json:"hashtag_preferences"`
	AIInstructions     string    `db:"ai_instructions" json:"ai_instructions"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}
