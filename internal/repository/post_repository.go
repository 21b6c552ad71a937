package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/socialmagic/content-engine/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	ListByUser(ctx context.Context, userID int64, status string) ([]*models.Post, error)
	ListApprovedUnscheduled(ctx context.Context, userID int64) ([]*models.Post, error)
	ListScheduledInWindow(ctx context.Context, from, to time.Time) ([]*models.Post, error)
	ListOverdue(ctx context.Context, userID int64, before time.Time) ([]*models.Post, error)
	CountCreatedInMonth(ctx context.Context, userID int64, year int, month time.Month) (int, error)
	CheckByUserID(ctx context.Context, postID, userID int64) (bool, error)
	TransitionStatus(ctx context.Context, postID int64, from, to string) (bool, error)
	RejectPost(ctx context.Context, postID int64, note string) (bool, error)
	Schedule(ctx context.Context, postID int64, at time.Time) (bool, error)
	UpdateGenerated(ctx context.Context, post *models.Post) error
	SetMedia(ctx context.Context, postID int64, mediaURL, thumbnailURL string) error
	MarkPosted(ctx context.Context, postID int64, postedAt time.Time) error
	MarkFailed(ctx context.Context, postID int64) error
	SetPlatformPostID(ctx context.Context, postID int64, platform, platformPostID string) error
	MergeMetadata(ctx context.Context, postID int64, extra map[string]any) error
	UpdateMetrics(ctx context.Context, postID int64, m models.PostMetrics, engagementRate float64, at time.Time) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, user_id, campaign_id, media_type, media_url, thumbnail_url,
	caption, hashtags, prompt_used, generation_metadata, status, rejection_note,
	regeneration_count, scheduled_for, posted_at, instagram_post_id, facebook_post_id,
	likes, comments, shares, reach, impressions, engagement_rate, last_metrics_update,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var post models.Post
	var metadata []byte
	err := row.Scan(
		&post.ID, &post.UserID, &post.CampaignID, &post.MediaType, &post.MediaURL,
		&post.ThumbnailURL, &post.Caption, pq.Array(&post.Hashtags), &post.PromptUsed,
		&metadata, &post.Status, &post.RejectionNote, &post.RegenerationCount,
		&post.ScheduledFor, &post.PostedAt, &post.InstagramPostID, &post.FacebookPostID,
		&post.Likes, &post.Comments, &post.Shares, &post.Reach, &post.Impressions,
		&post.EngagementRate, &post.LastMetricsUpdate, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &post.GenerationMetadata); err != nil {
			return nil, err
		}
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (user_id, campaign_id, media_type, caption, hashtags, prompt_used, generation_metadata, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	metadata, err := json.Marshal(post.GenerationMetadata)
	if err != nil {
		return 0, err
	}

	var id int64
	args := []any{post.UserID, post.CampaignID, post.MediaType, post.Caption,
		pq.Array(post.Hashtags), post.PromptUsed, metadata, post.Status}

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

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) list(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *postRepository) ListByUser(ctx context.Context, userID int64, status string) ([]*models.Post, error) {
	if status == "" {
		query := `SELECT ` + postColumns + ` FROM posts WHERE user_id = $1 ORDER BY created_at DESC`
		return r.list(ctx, query, userID)
	}
	query := `SELECT ` + postColumns + ` FROM posts WHERE user_id = $1 AND status = $2 ORDER BY created_at DESC`
	return r.list(ctx, query, userID, status)
}

func (r *postRepository) ListApprovedUnscheduled(ctx context.Context, userID int64) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE user_id = $1 AND status = $2 AND scheduled_for IS NULL
		ORDER BY created_at ASC`
	return r.list(ctx, query, userID, models.PostStatusApproved)
}

func (r *postRepository) ListScheduledInWindow(ctx context.Context, from, to time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE status = $1 AND scheduled_for > $2 AND scheduled_for <= $3
		ORDER BY scheduled_for ASC`
	return r.list(ctx, query, models.PostStatusScheduled, from, to)
}

func (r *postRepository) ListOverdue(ctx context.Context, userID int64, before time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE user_id = $1 AND status = $2 AND scheduled_for <= $3
		ORDER BY scheduled_for ASC`
	return r.list(ctx, query, userID, models.PostStatusScheduled, before)
}

func (r *postRepository) CountCreatedInMonth(ctx context.Context, userID int64, year int, month time.Month) (int, error) {
	query := `SELECT COUNT(*) FROM posts
		WHERE user_id = $1
		AND EXTRACT(YEAR FROM created_at) = $2
		AND EXTRACT(MONTH FROM created_at) = $3`

	var count int
	err := r.db.QueryRowContext(ctx, query, userID, year, int(month)).Scan(&count)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}

func (r *postRepository) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	query := "SELECT 1 FROM posts WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, postID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}
	return result == 1, nil
}

// TransitionStatus moves a post from one status to another in a single
// statement; the WHERE clause on the source status is the race guard.
func (r *postRepository) TransitionStatus(ctx context.Context, postID int64, from, to string) (bool, error) {
	query := `UPDATE posts SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	res, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), postID, from)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *postRepository) RejectPost(ctx context.Context, postID int64, note string) (bool, error) {
	query := `UPDATE posts SET status = $1, rejection_note = $2, updated_at = $3
		WHERE id = $4 AND status = $5`
	res, err := r.db.ExecContext(ctx, query, models.PostStatusRejected, note, time.Now().UTC(), postID, models.PostStatusPending)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Schedule sets the publish timestamp and flips approved -> scheduled in
// one statement, so a post can never end up with a timestamp but the old
// status.
func (r *postRepository) Schedule(ctx context.Context, postID int64, at time.Time) (bool, error) {
	query := `UPDATE posts SET status = $1, scheduled_for = $2, updated_at = $3
		WHERE id = $4 AND status = $5`
	res, err := r.db.ExecContext(ctx, query, models.PostStatusScheduled, at, time.Now().UTC(), postID, models.PostStatusApproved)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *postRepository) UpdateGenerated(ctx context.Context, post *models.Post) error {
	metadata, err := json.Marshal(post.GenerationMetadata)
	if err != nil {
		return err
	}

	query := `
		UPDATE posts
		SET caption = $1,
			hashtags = $2,
			media_url = $3,
			thumbnail_url = $4,
			rejection_note = $5,
			regeneration_count = $6,
			generation_metadata = $7,
			status = $8,
			updated_at = $9
		WHERE id = $10
	`
	_, err = r.db.ExecContext(ctx, query, post.Caption, pq.Array(post.Hashtags),
		post.MediaURL, post.ThumbnailURL, post.RejectionNote, post.RegenerationCount,
		metadata, post.Status, time.Now().UTC(), post.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) SetMedia(ctx context.Context, postID int64, mediaURL, thumbnailURL string) error {
	query := `UPDATE posts SET media_url = $1, thumbnail_url = $2, updated_at = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, mediaURL, thumbnailURL, time.Now().UTC(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) MarkPosted(ctx context.Context, postID int64, postedAt time.Time) error {
	query := `UPDATE posts SET status = $1, posted_at = $2, updated_at = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusPosted, postedAt, time.Now().UTC(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) MarkFailed(ctx context.Context, postID int64) error {
	query := `UPDATE posts SET status = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusFailed, time.Now().UTC(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) SetPlatformPostID(ctx context.Context, postID int64, platform, platformPostID string) error {
	var column string
	switch platform {
	case models.PlatformInstagram:
		column = "instagram_post_id"
	case models.PlatformFacebook:
		column = "facebook_post_id"
	default:
		return nil
	}

	query := `UPDATE posts SET ` + column + ` = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, platformPostID, time.Now().UTC(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) MergeMetadata(ctx context.Context, postID int64, extra map[string]any) error {
	data, err := json.Marshal(extra)
	if err != nil {
		return err
	}

	query := `UPDATE posts
		SET generation_metadata = COALESCE(generation_metadata, '{}'::jsonb) || $1::jsonb,
			updated_at = $2
		WHERE id = $3`
	_, err = r.db.ExecContext(ctx, query, data, time.Now().UTC(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) UpdateMetrics(ctx context.Context, postID int64, m models.PostMetrics, engagementRate float64, at time.Time) error {
	query := `
		UPDATE posts
		SET impressions = $1,
			reach = $2,
			likes = $3,
			comments = $4,
			shares = $5,
			engagement_rate = $6,
			last_metrics_update = $7,
			updated_at = $7
		WHERE id = $8
	`
	_, err := r.db.ExecContext(ctx, query, m.Impressions, m.Reach, m.Likes,
		m.Comments, m.Shares, engagementRate, at, postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
