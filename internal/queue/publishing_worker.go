package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/socialmagic/content-engine/internal/models"
)

// NextPublishBase is the first publish slot assigned after a scheduling
// pass: the given hour UTC on the day after now. Subsequent items get one
// day each, so a batch spreads into an evenly spaced calendar.
func NextPublishBase(now time.Time, hour int) time.Time {
	day := now.UTC().Truncate(24 * time.Hour)
	return day.Add(24 * time.Hour).Add(time.Duration(hour) * time.Hour)
}

// HandleScheduleApproved assigns publish slots to every approved,
// unscheduled post of one user, oldest created first.
func (w *Worker) HandleScheduleApproved(ctx context.Context, task *asynq.Task) error {
	var payload ScheduleApprovedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	posts, err := w.posts.ListApprovedUnscheduled(ctx, payload.UserID)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		slog.Info("no approved posts to schedule", "user_id", payload.UserID)
		return nil
	}

	base := NextPublishBase(time.Now(), w.cfg.Scheduling.PublishHourUTC)
	for i, post := range posts {
		ok, err := w.posts.Schedule(ctx, post.ID, base.AddDate(0, 0, i))
		if err != nil {
			return err
		}
		if !ok {
			slog.Info("post no longer approved, skipping slot", "post_id", post.ID)
		}
	}

	slog.Info("approved posts scheduled", "user_id", payload.UserID, "count", len(posts))
	return nil
}

// HandlePublishPost pushes one scheduled post to the user's destinations.
// Primary destination failure is terminal for the item; secondary
// destinations are best-effort.
func (w *Worker) HandlePublishPost(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	post, err := w.posts.GetByID(ctx, payload.PostID)
	if err != nil {
		return err
	}
	if post == nil {
		slog.Error("post not found for publishing", "post_id", payload.PostID)
		return fmt.Errorf("post %d not found: %w", payload.PostID, asynq.SkipRetry)
	}
	if post.Status != models.PostStatusScheduled {
		slog.Info("post is not scheduled, skipping publish", "post_id", post.ID, "status", post.Status)
		return nil
	}

	primaryAccount, err := w.accounts.GetConnected(ctx, post.UserID, w.primary.Platform())
	if err != nil {
		return err
	}

	// No connected destination: simulate the publish so the pipeline
	// keeps moving, and mark it clearly in the metadata.
	if primaryAccount == nil {
		slog.Info("no connected account, simulating publish", "post_id", post.ID, "user_id", post.UserID)
		if err := w.posts.MergeMetadata(ctx, post.ID, map[string]any{"simulated_publish": true}); err != nil {
			return err
		}
		return w.posts.MarkPosted(ctx, post.ID, time.Now().UTC())
	}

	caption := fullCaption(post)

	platformPostID, err := w.primary.Publish(ctx, primaryAccount, post.MediaURL, caption)
	w.recordAttempt(ctx, post, w.primary.Platform(), platformPostID, err)
	if err != nil {
		slog.Error("primary publish failed", "post_id", post.ID, "error", err)
		if markErr := w.posts.MarkFailed(ctx, post.ID); markErr != nil {
			return markErr
		}
		w.notify.Notify(ctx, post.UserID, models.NotificationPostFailed,
			"Post failed to publish",
			"One of your scheduled posts could not be published.",
			map[string]any{"post_id": post.ID})
		// The status guard above makes queue-level retries a no-op; the
		// failure stays visible for a human or remediation flow.
		return err
	}

	if err := w.posts.SetPlatformPostID(ctx, post.ID, w.primary.Platform(), platformPostID); err != nil {
		return err
	}

	w.crossPost(ctx, post, caption)

	if err := w.posts.MarkPosted(ctx, post.ID, time.Now().UTC()); err != nil {
		return err
	}

	w.notify.Notify(ctx, post.UserID, models.NotificationPostPublished,
		"Post published",
		"Your scheduled post is live.",
		map[string]any{"post_id": post.ID})

	if err := EnqueueRefreshMetrics(w.client, RefreshMetricsPayload{PostID: post.ID}, w.cfg.Scheduling.MetricsDelay); err != nil {
		slog.Error("failed to enqueue metrics refresh", "post_id", post.ID, "error", err)
	}

	slog.Info("post published", "post_id", post.ID, "platform_post_id", platformPostID)
	return nil
}

// crossPost attempts the secondary destination; failures are logged only.
func (w *Worker) crossPost(ctx context.Context, post *models.Post, caption string) {
	if w.secondary == nil {
		return
	}
	account, err := w.accounts.GetConnected(ctx, post.UserID, w.secondary.Platform())
	if err != nil || account == nil {
		return
	}

	platformPostID, err := w.secondary.Publish(ctx, account, post.MediaURL, caption)
	w.recordAttempt(ctx, post, w.secondary.Platform(), platformPostID, err)
	if err != nil {
		slog.Info("cross-post failed", "post_id", post.ID, "platform", w.secondary.Platform(), "error", err)
		return
	}
	if err := w.posts.SetPlatformPostID(ctx, post.ID, w.secondary.Platform(), platformPostID); err != nil {
		slog.Info(err.Error())
	}
}

func (w *Worker) recordAttempt(ctx context.Context, post *models.Post, platform, platformPostID string, publishErr error) {
	attempt := &models.PublishAttempt{
		UserID:         post.UserID,
		PostID:         post.ID,
		Platform:       platform,
		PlatformPostID: platformPostID,
	}
	if publishErr != nil {
		attempt.ErrorMessage = publishErr.Error()
	}
	if _, err := w.attempts.Create(ctx, attempt); err != nil {
		slog.Info("failed to record publish attempt", "post_id", post.ID, "error", err)
	}
}

func fullCaption(post *models.Post) string {
	if len(post.Hashtags) == 0 {
		return post.Caption
	}
	return post.Caption + "\n\n" + strings.Join(post.Hashtags, " ")
}
