package models

import (
	"time"
)

type SocialAccount struct {
	ID              int64     `db:"id" json:"id"`
	UserID          int64     `db:"user_id" json:"user_id"`
	Platform        string    `db:"platform" json:"platform"`
	AccountID       string    `db:"account_id" json:"account_id"`
	AccountUsername string    `db:"account_username" json:"account_username"`
	AccessToken     string    `db:"access_token" json:"access_token"`
	RefreshToken    string    `db:"refresh_token" json:"refresh_token"`
	TokenExpiresAt  time.Time `db:"token_expires_at" json:"token_expires_at"`
	IsConnected     bool      `db:"is_connected" json:"is_connected"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

const (
	PlatformInstagram = "instagram"
	PlatformFacebook  = "facebook"
)
