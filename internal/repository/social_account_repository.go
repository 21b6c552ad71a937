package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/socialmagic/content-engine/internal/models"
)

type SocialAccountRepository interface {
	Create(ctx context.Context, tx *sql.Tx, account *models.SocialAccount) (int64, error)
	GetConnected(ctx context.Context, userID int64, platform string) (*models.SocialAccount, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.SocialAccount, error)
	UpdateTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error
	Disconnect(ctx context.Context, id, userID int64) error
}

type socialAccountRepository struct {
	db *sql.DB
}

func NewSocialAccountRepository(db *sql.DB) SocialAccountRepository {
	return &socialAccountRepository{db: db}
}

const socialAccountColumns = `id, user_id, platform, account_id, account_username,
	access_token, refresh_token, token_expires_at, is_connected, created_at, updated_at`

func scanSocialAccount(row rowScanner) (*models.SocialAccount, error) {
	var a models.SocialAccount
	err := row.Scan(&a.ID, &a.UserID, &a.Platform, &a.AccountID, &a.AccountUsername,
		&a.AccessToken, &a.RefreshToken, &a.TokenExpiresAt, &a.IsConnected,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *socialAccountRepository) Create(ctx context.Context, tx *sql.Tx, account *models.SocialAccount) (int64, error) {
	query := `
		INSERT INTO social_accounts (user_id, platform, account_id, account_username, access_token, refresh_token, token_expires_at, is_connected)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true)
		ON CONFLICT (user_id, platform) DO UPDATE
		SET account_id = EXCLUDED.account_id,
			account_username = EXCLUDED.account_username,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expires_at = EXCLUDED.token_expires_at,
			is_connected = true,
			updated_at = now()
		RETURNING id
	`

	var id int64
	var err error
	args := []any{account.UserID, account.Platform, account.AccountID,
		account.AccountUsername, account.AccessToken, account.RefreshToken,
		account.TokenExpiresAt}

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

func (r *socialAccountRepository) GetConnected(ctx context.Context, userID int64, platform string) (*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts
		WHERE user_id = $1 AND platform = $2 AND is_connected = true`
	account, err := scanSocialAccount(r.db.QueryRowContext(ctx, query, userID, platform))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return account, nil
}

func (r *socialAccountRepository) ListByUser(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE user_id = $1`
	return r.list(ctx, query, userID)
}

func (r *socialAccountRepository) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts
		WHERE is_connected = true AND token_expires_at >= $1 AND token_expires_at <= $2`
	return r.list(ctx, query, from, to)
}

func (r *socialAccountRepository) list(ctx context.Context, query string, args ...any) ([]*models.SocialAccount, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.SocialAccount
	for rows.Next() {
		account, err := scanSocialAccount(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (r *socialAccountRepository) UpdateTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error {
	query := `UPDATE social_accounts
		SET access_token = $1, refresh_token = $2, token_expires_at = $3, updated_at = $4
		WHERE id = $5`
	_, err := r.db.ExecContext(ctx, query, accessToken, refreshToken, expiresAt, time.Now().UTC(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialAccountRepository) Disconnect(ctx context.Context, id, userID int64) error {
	query := `UPDATE social_accounts SET is_connected = false, updated_at = $1 WHERE id = $2 AND user_id = $3`
	_, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
