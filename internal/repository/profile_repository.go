package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/lib/pq"
	"github.com/socialmagic/content-engine/internal/models"
)

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.BusinessProfile, bool, error)
}

type profileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID int64) (*models.BusinessProfile, bool, error) {
	var p models.BusinessProfile
	query := `SELECT id, user_id, brand_name, brand_description, brand_voice, brand_style,
		target_audience, industry, content_themes, hashtag_preferences, ai_instructions,
		created_at, updated_at
		FROM business_profiles WHERE user_id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&p.ID, &p.UserID,
		&p.BrandName, &p.BrandDescription, &p.BrandVoice, &p.BrandStyle,
		&p.TargetAudience, &p.Industry, pq.Array(&p.ContentThemes),
		pq.Array(&p.HashtagPreferences), &p.AIInstructions, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &p, true, nil
}
