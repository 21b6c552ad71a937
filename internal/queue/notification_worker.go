package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/socialmagic/content-engine/internal/models"
)

// HandleWeeklyDigest writes the "your posts are ready" notification for a
// completed generation cycle. Delivery beyond the notification row (email
// and the like) is someone else's concern.
func (w *Worker) HandleWeeklyDigest(ctx context.Context, task *asynq.Task) error {
	var payload WeeklyDigestPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	weekly, err := w.weekly.GetByID(ctx, payload.WeeklyGenerationID)
	if err != nil {
		return err
	}
	if weekly == nil {
		slog.Error("weekly record not found for digest", "weekly_generation_id", payload.WeeklyGenerationID)
		return fmt.Errorf("weekly record %d not found: %w", payload.WeeklyGenerationID, asynq.SkipRetry)
	}
	if weekly.NotificationSent {
		slog.Info("weekly digest already sent", "weekly_generation_id", weekly.ID)
		return nil
	}

	w.notify.Notify(ctx, payload.UserID, models.NotificationWeeklyDigest,
		"Your weekly posts are ready",
		fmt.Sprintf("We generated %d new posts for your review this week.", weekly.PostsGenerated),
		map[string]any{
			"weekly_generation_id": weekly.ID,
			"posts_generated":      weekly.PostsGenerated,
		})

	return w.weekly.MarkNotificationSent(ctx, weekly.ID)
}
