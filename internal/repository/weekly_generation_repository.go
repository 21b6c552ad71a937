package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/socialmagic/content-engine/internal/models"
)

type WeeklyGenerationRepository interface {
	GetByUserAndWeek(ctx context.Context, userID int64, weekStart time.Time) (*models.WeeklyGeneration, error)
	GetByID(ctx context.Context, id int64) (*models.WeeklyGeneration, error)
	GetOrCreate(ctx context.Context, userID int64, weekStart time.Time) (*models.WeeklyGeneration, error)
	MarkCompleted(ctx context.Context, id int64, postsGenerated int) error
	MarkNotificationSent(ctx context.Context, id int64) error
	IncrementApproved(ctx context.Context, id int64) error
	IncrementRejected(ctx context.Context, id int64) error
}

type weeklyGenerationRepository struct {
	db *sql.DB
}

func NewWeeklyGenerationRepository(db *sql.DB) WeeklyGenerationRepository {
	return &weeklyGenerationRepository{db: db}
}

const weeklyGenerationColumns = `id, user_id, week_start_date, posts_generated, posts_approved,
	posts_rejected, generation_completed, notification_sent, created_at`

func (r *weeklyGenerationRepository) scan(row rowScanner) (*models.WeeklyGeneration, error) {
	var wg models.WeeklyGeneration
	err := row.Scan(&wg.ID, &wg.UserID, &wg.WeekStartDate, &wg.PostsGenerated,
		&wg.PostsApproved, &wg.PostsRejected, &wg.GenerationCompleted,
		&wg.NotificationSent, &wg.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &wg, nil
}

func (r *weeklyGenerationRepository) GetByUserAndWeek(ctx context.Context, userID int64, weekStart time.Time) (*models.WeeklyGeneration, error) {
	query := `SELECT ` + weeklyGenerationColumns + ` FROM weekly_generations
		WHERE user_id = $1 AND week_start_date = $2`
	wg, err := r.scan(r.db.QueryRowContext(ctx, query, userID, weekStart))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return wg, nil
}

func (r *weeklyGenerationRepository) GetByID(ctx context.Context, id int64) (*models.WeeklyGeneration, error) {
	query := `SELECT ` + weeklyGenerationColumns + ` FROM weekly_generations WHERE id = $1`
	wg, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return wg, nil
}

// GetOrCreate relies on the unique constraint on (user_id,
// week_start_date): concurrent fan-out attempts for the same week both
// land on the single existing row.
func (r *weeklyGenerationRepository) GetOrCreate(ctx context.Context, userID int64, weekStart time.Time) (*models.WeeklyGeneration, error) {
	insert := `INSERT INTO weekly_generations (user_id, week_start_date)
		VALUES ($1, $2)
		ON CONFLICT (user_id, week_start_date) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, userID, weekStart); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return r.GetByUserAndWeek(ctx, userID, weekStart)
}

// MarkCompleted only ever flips the flag false -> true; the WHERE clause
// keeps a completed week from being re-opened.
func (r *weeklyGenerationRepository) MarkCompleted(ctx context.Context, id int64, postsGenerated int) error {
	query := `UPDATE weekly_generations
		SET posts_generated = $1, generation_completed = true
		WHERE id = $2 AND generation_completed = false`
	_, err := r.db.ExecContext(ctx, query, postsGenerated, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *weeklyGenerationRepository) MarkNotificationSent(ctx context.Context, id int64) error {
	query := `UPDATE weekly_generations SET notification_sent = true WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *weeklyGenerationRepository) IncrementApproved(ctx context.Context, id int64) error {
	query := `UPDATE weekly_generations SET posts_approved = posts_approved + 1 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *weeklyGenerationRepository) IncrementRejected(ctx context.Context, id int64) error {
	query := `UPDATE weekly_generations SET posts_rejected = posts_rejected + 1 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
