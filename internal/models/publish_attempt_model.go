package models

import "time"

// PublishAttempt records one outbound publish call per platform, success
// or not. The error message is empty on success.
type PublishAttempt struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	PostID         int64     `db:"post_id" json:"post_id"`
	Platform       string    `db:"platform" json:"platform"`
	PlatformPostID string    `db:"platform_post_id" json:"platform_post_id"`
	ErrorMessage   string    `db:"error_message" json:"error_message"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
