package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/socialmagic/content-engine/internal/models"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, bool, error)
	ListDueForGeneration(ctx context.Context, weekday int) ([]*models.User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, bool, error) {
	var user models.User
	query := `SELECT id, email, subscription_active, subscription_tier, weekly_generation_day, created_at, updated_at
		FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Email,
		&user.SubscriptionActive, &user.SubscriptionTier, &user.WeeklyGenerationDay,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &user, true, nil
}

// ListDueForGeneration returns active subscribers whose configured
// generation day matches the given weekday (0=Monday).
func (r *userRepository) ListDueForGeneration(ctx context.Context, weekday int) ([]*models.User, error) {
	query := `SELECT id, email, subscription_active, subscription_tier, weekly_generation_day, created_at, updated_at
		FROM users WHERE subscription_active = true AND weekly_generation_day = $1`

	rows, err := r.db.QueryContext(ctx, query, weekday)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(&user.ID, &user.Email, &user.SubscriptionActive,
			&user.SubscriptionTier, &user.WeeklyGenerationDay, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}
