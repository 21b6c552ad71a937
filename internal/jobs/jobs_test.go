package jobs_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	config "github.com/socialmagic/content-engine/configs"
	"github.com/socialmagic/content-engine/internal/apperrors"
	"github.com/socialmagic/content-engine/internal/jobs"
	"github.com/socialmagic/content-engine/internal/models"
	"github.com/socialmagic/content-engine/internal/queue"
	"github.com/socialmagic/content-engine/internal/repository"
	"github.com/stretchr/testify/require"
)

type enqueuerStub struct {
	tasks []*asynq.Task
}

func (e *enqueuerStub) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	e.tasks = append(e.tasks, task)
	return &asynq.TaskInfo{}, nil
}

type postRepoStub struct {
	repository.PostRepository
	windowFrom time.Time
	windowTo   time.Time
	scheduled  []*models.Post
}

func (s *postRepoStub) ListScheduledInWindow(ctx context.Context, from, to time.Time) ([]*models.Post, error) {
	s.windowFrom = from
	s.windowTo = to
	return s.scheduled, nil
}

type userRepoStub struct {
	repository.UserRepository
	due     []*models.User
	weekday int
}

func (s *userRepoStub) ListDueForGeneration(ctx context.Context, weekday int) ([]*models.User, error) {
	s.weekday = weekday
	return s.due, nil
}

type weeklyRepoStub struct {
	repository.WeeklyGenerationRepository
	records map[int64]*models.WeeklyGeneration
}

func (s *weeklyRepoStub) GetByUserAndWeek(ctx context.Context, userID int64, weekStart time.Time) (*models.WeeklyGeneration, error) {
	return s.records[userID], nil
}

type subscriptionStub struct {
	errs map[int64]error
}

func (s *subscriptionStub) CheckGenerationQuota(ctx context.Context, user *models.User) error {
	return s.errs[user.ID]
}

func TestMondayWeekday(t *testing.T) {
	monday := time.Date(2026, 8, 17, 9, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)

	require.Equal(t, 0, jobs.MondayWeekday(monday))
	require.Equal(t, 6, jobs.MondayWeekday(sunday))
}

func TestWeekStart(t *testing.T) {
	monday := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)

	wednesday := time.Date(2026, 8, 19, 15, 30, 0, 0, time.UTC)
	require.Equal(t, monday, jobs.WeekStart(wednesday))

	require.Equal(t, monday, jobs.WeekStart(monday.Add(12*time.Hour)))

	sunday := time.Date(2026, 8, 23, 23, 59, 0, 0, time.UTC)
	require.Equal(t, monday, jobs.WeekStart(sunday))
}

func TestPublishSweepWindow(t *testing.T) {
	cfg := config.Config{Scheduling: config.Scheduling{PublishSweepInterval: 15 * time.Minute}}
	posts := &postRepoStub{scheduled: []*models.Post{{ID: 1}, {ID: 2}}}
	enq := &enqueuerStub{}

	jobs.NewPublishSweepJob(cfg, posts, enq).Run()

	require.Equal(t, 15*time.Minute, posts.windowTo.Sub(posts.windowFrom))
	require.WithinDuration(t, time.Now().UTC(), posts.windowTo, time.Second)
	require.Len(t, enq.tasks, 2)
	for _, task := range enq.tasks {
		require.Equal(t, queue.TaskTypePublishPost, task.Type())
	}
}

func TestGenerationSweepEnqueuesDueUsers(t *testing.T) {
	users := &userRepoStub{due: []*models.User{
		{ID: 1, SubscriptionTier: models.TierBasic},
		{ID: 2, SubscriptionTier: models.TierBasic},
		{ID: 3, SubscriptionTier: models.TierBasic},
	}}
	weekly := &weeklyRepoStub{records: map[int64]*models.WeeklyGeneration{
		1: {ID: 11, UserID: 1, GenerationCompleted: true},
	}}
	subs := &subscriptionStub{errs: map[int64]error{
		3: &apperrors.QuotaExceededError{UserID: 3, Limit: 25},
	}}
	enq := &enqueuerStub{}

	jobs.NewGenerationSweepJob(users, weekly, subs, enq).Run()

	require.Equal(t, jobs.MondayWeekday(time.Now().UTC()), users.weekday)
	require.Len(t, enq.tasks, 1)

	var payload queue.GenerateUserWeekPayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &payload))
	require.Equal(t, int64(2), payload.UserID)
	require.Equal(t, jobs.WeekStart(time.Now().UTC()), payload.WeekStart.UTC())
}
