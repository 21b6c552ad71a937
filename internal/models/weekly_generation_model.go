package models

import "time"

// WeeklyGeneration is the bookkeeping row for one user's generation
// cycle. At most one row exists per (user, week start); the unique
// constraint on that pair is what prevents double generation in a week.
type WeeklyGeneration struct {
	ID                  int64     `db:"id" json:"id"`
	UserID              int64     `db:"user_id" json:"user_id"`
	WeekStartDate       time.Time `db:"week_start_date" json:"week_start_date"`
	PostsGenerated      int       `db:"posts_generated" json:"posts_generated"`
	PostsApproved       int       `db:"posts_approved" json:"posts_approved"`
	PostsRejected       int       `db:"posts_rejected" json:"posts_rejected"`
	GenerationCompleted bool      `db:"generation_completed" json:"generation_completed"`
	NotificationSent    bool      `db:"notification_sent" json:"notification_sent"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}
