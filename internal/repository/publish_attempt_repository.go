package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/socialmagic/content-engine/internal/models"
)

type PublishAttemptRepository interface {
	Create(ctx context.Context, attempt *models.PublishAttempt) (int64, error)
	ListByPost(ctx context.Context, postID int64) ([]*models.PublishAttempt, error)
}

type publishAttemptRepository struct {
	db *sql.DB
}

func NewPublishAttemptRepository(db *sql.DB) PublishAttemptRepository {
	return &publishAttemptRepository{db: db}
}

func (r *publishAttemptRepository) Create(ctx context.Context, attempt *models.PublishAttempt) (int64, error) {
	query := `INSERT INTO publish_attempts (user_id, post_id, platform, platform_post_id, error_message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query, attempt.UserID, attempt.PostID,
		attempt.Platform, attempt.PlatformPostID, attempt.ErrorMessage).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *publishAttemptRepository) ListByPost(ctx context.Context, postID int64) ([]*models.PublishAttempt, error) {
	query := `SELECT id, user_id, post_id, platform, platform_post_id, error_message, created_at
		FROM publish_attempts WHERE post_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var attempts []*models.PublishAttempt
	for rows.Next() {
		var a models.PublishAttempt
		err := rows.Scan(&a.ID, &a.UserID, &a.PostID, &a.Platform, &a.PlatformPostID,
			&a.ErrorMessage, &a.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		attempts = append(attempts, &a)
	}
	return attempts, rows.Err()
}
