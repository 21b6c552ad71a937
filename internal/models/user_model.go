package models

import "time"

type User struct {
	ID                  int64     `db:"id" json:"id"`
	Email               string    `db:"email" json:"email"`
	SubscriptionActive  bool      `db:"subscription_active" json:"subscription_active"`
	SubscriptionTier    string    `db:"subscription_tier" json:"subscription_tier"`
	WeeklyGenerationDay int       `db:"weekly_generation_day" json:"weekly_generation_day"` // 0=Monday .. 6=Sunday
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

const (
	TierBasic = "basic"
	TierPro   = "pro"
)
