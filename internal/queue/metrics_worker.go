package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/socialmagic/content-engine/internal/models"
	"github.com/socialmagic/content-engine/internal/service"
)

// EngagementRate derives the engagement percentage from a metrics
// snapshot. With zero reach the previous value is kept so a refresh never
// stores NaN or wipes an earlier reading.
func EngagementRate(previous float64, m models.PostMetrics) float64 {
	if m.Reach <= 0 {
		return previous
	}
	return float64(m.Likes+m.Comments+m.Shares) / float64(m.Reach) * 100
}

// HandleRefreshMetrics pulls insights for a posted item and overwrites
// its counters. Overwriting (never incrementing) keeps the job idempotent
// under re-delivery.
func (w *Worker) HandleRefreshMetrics(ctx context.Context, task *asynq.Task) error {
	var payload RefreshMetricsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	post, err := w.posts.GetByID(ctx, payload.PostID)
	if err != nil {
		return err
	}
	if post == nil || post.Status != models.PostStatusPosted {
		slog.Info("post not eligible for metrics refresh", "post_id", payload.PostID)
		return nil
	}
	if post.InstagramPostID == "" {
		slog.Info("post has no platform id, skipping metrics", "post_id", post.ID)
		return nil
	}

	account, err := w.accounts.GetConnected(ctx, post.UserID, w.primary.Platform())
	if err != nil {
		return err
	}
	if account == nil {
		slog.Info("no connected account for metrics refresh", "post_id", post.ID)
		return nil
	}

	insights, err := w.primary.GetInsights(ctx, account, post.InstagramPostID)
	if err != nil {
		return err
	}

	metrics := insightsToMetrics(insights)
	rate := EngagementRate(post.EngagementRate, metrics)

	if err := w.posts.UpdateMetrics(ctx, post.ID, metrics, rate, time.Now().UTC()); err != nil {
		return err
	}

	slog.Info("post metrics refreshed", "post_id", post.ID, "reach", metrics.Reach)
	return nil
}

func insightsToMetrics(in *service.Insights) models.PostMetrics {
	return models.PostMetrics{
		Impressions: in.Impressions,
		Reach:       in.Reach,
		Likes:       in.Likes,
		Comments:    in.Comments,
		Shares:      in.Shares,
	}
}
