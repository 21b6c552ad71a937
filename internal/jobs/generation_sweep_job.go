package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/socialmagic/content-engine/internal/apperrors"
	"github.com/socialmagic/content-engine/internal/queue"
	"github.com/socialmagic/content-engine/internal/repository"
	"github.com/socialmagic/content-engine/internal/service"
)

// MondayWeekday maps time.Weekday to the Monday-anchored convention used
// on users (0=Monday .. 6=Sunday).
func MondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// WeekStart is the Monday 00:00 UTC date of the week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -MondayWeekday(t))
}

// GenerationSweepJob is the discovery pass: once a day it finds users
// whose generation day is today and fans their work out to the queue, so
// one slow user cannot block the pass.
type GenerationSweepJob struct {
	users  repository.UserRepository
	weekly repository.WeeklyGenerationRepository
	subs   service.SubscriptionService
	client queue.Enqueuer
}

func NewGenerationSweepJob(
	users repository.UserRepository,
	weekly repository.WeeklyGenerationRepository,
	subs service.SubscriptionService,
	client queue.Enqueuer) *GenerationSweepJob {
	return &GenerationSweepJob{users: users, weekly: weekly, subs: subs, client: client}
}

func (j *GenerationSweepJob) Run() {
	ctx := context.Background()
	now := time.Now().UTC()

	users, err := j.users.ListDueForGeneration(ctx, MondayWeekday(now))
	if err != nil {
		slog.Error("generation sweep discovery failed", "error", err)
		return
	}

	weekStart := WeekStart(now)
	for _, user := range users {
		// Per-user failures must not abort the batch.
		record, err := j.weekly.GetByUserAndWeek(ctx, user.ID, weekStart)
		if err != nil {
			slog.Error("weekly record lookup failed", "user_id", user.ID, "error", err)
			continue
		}
		if record != nil && record.GenerationCompleted {
			continue
		}

		if err := j.subs.CheckGenerationQuota(ctx, user); err != nil {
			var quotaErr *apperrors.QuotaExceededError
			if errors.As(err, &quotaErr) {
				slog.Warn("user reached monthly post limit", "user_id", user.ID, "limit", quotaErr.Limit)
			} else {
				slog.Error("quota check failed", "user_id", user.ID, "error", err)
			}
			continue
		}

		err = queue.EnqueueGenerateUserWeek(j.client, queue.GenerateUserWeekPayload{
			UserID:    user.ID,
			WeekStart: weekStart,
		})
		if err != nil {
			slog.Error("failed to enqueue weekly generation", "user_id", user.ID, "error", err)
		}
	}
}
