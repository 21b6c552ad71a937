package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/socialmagic/content-engine/internal/models"
)

type CampaignRepository interface {
	Create(ctx context.Context, tx *sql.Tx, campaign *models.Campaign) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Campaign, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Campaign, error)
	ListActiveByUser(ctx context.Context, userID int64) ([]*models.Campaign, error)
	Deactivate(ctx context.Context, id, userID int64) error
}

type campaignRepository struct {
	db *sql.DB
}

func NewCampaignRepository(db *sql.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

const campaignColumns = `id, user_id, name, description, prompt_template, is_active, posts_per_week, created_at, updated_at`

func (r *campaignRepository) Create(ctx context.Context, tx *sql.Tx, campaign *models.Campaign) (int64, error) {
	query := `
		INSERT INTO campaigns (user_id, name, description, prompt_template, is_active, posts_per_week)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	var err error
	args := []any{campaign.UserID, campaign.Name, campaign.Description,
		campaign.PromptTemplate, campaign.IsActive, campaign.PostsPerWeek}

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, args...).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *campaignRepository) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	var c models.Campaign
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.UserID, &c.Name,
		&c.Description, &c.PromptTemplate, &c.IsActive, &c.PostsPerWeek,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &c, nil
}

func (r *campaignRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *campaignRepository) ListActiveByUser(ctx context.Context, userID int64) ([]*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE user_id = $1 AND is_active = true ORDER BY created_at ASC`
	return r.list(ctx, query, userID)
}

func (r *campaignRepository) list(ctx context.Context, query string, args ...any) ([]*models.Campaign, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		var c models.Campaign
		err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.PromptTemplate,
			&c.IsActive, &c.PostsPerWeek, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		campaigns = append(campaigns, &c)
	}
	return campaigns, rows.Err()
}

func (r *campaignRepository) Deactivate(ctx context.Context, id, userID int64) error {
	query := `UPDATE campaigns SET is_active = false, updated_at = $1 WHERE id = $2 AND user_id = $3`
	_, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
