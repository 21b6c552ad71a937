package transfer

import "github.com/golang-jwt/jwt/v5"

type CustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type CampaignCreation struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	PromptTemplate string `json:"prompt_template"`
	PostsPerWeek   int    `json:"posts_per_week"`
}

type PostRejection struct {
	PostID int64  `json:"post_id"`
	Note   string `json:"note"`
}

type PostApproval struct {
	PostID int64 `json:"post_id"`
}
