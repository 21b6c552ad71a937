package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/socialmagic/content-engine/internal/models"
	"github.com/socialmagic/content-engine/internal/queue"
	"github.com/stretchr/testify/require"
)

var errContainerRejected = errors.New("media container rejected")

func TestNextPublishBase(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)
	base := queue.NextPublishBase(now, 10)
	require.Equal(t, time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC), base)

	midnight := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC), queue.NextPublishBase(midnight, 10))
}

func TestHandleScheduleApprovedAssignsDailySlots(t *testing.T) {
	posts := &postRepoStub{
		approved: []*models.Post{
			{ID: 1, UserID: 5, Status: models.PostStatusApproved},
			{ID: 2, UserID: 5, Status: models.PostStatusApproved},
			{ID: 3, UserID: 5, Status: models.PostStatusApproved},
		},
	}
	w := queue.NewWorker(testConfig(), &enqueuerStub{}, nil, nil, nil,
		posts, nil, nil, nil, nil, nil, nil, nil, nil)

	task := newTask(t, queue.TaskTypeScheduleApproved, queue.ScheduleApprovedPayload{UserID: 5})
	require.NoError(t, w.HandleScheduleApproved(context.Background(), task))

	require.Len(t, posts.scheduled, 3)
	base := queue.NextPublishBase(time.Now(), 10)
	for i, slot := range posts.scheduled {
		require.Equal(t, int64(i+1), slot.PostID)
		require.Equal(t, base.AddDate(0, 0, i), slot.At)
	}
}

func TestHandlePublishPostNotScheduled(t *testing.T) {
	posts := &postRepoStub{
		byID: map[int64]*models.Post{
			9: {ID: 9, UserID: 5, Status: models.PostStatusPosted},
		},
	}
	primary := &publisherStub{platform: models.PlatformInstagram}
	w := queue.NewWorker(testConfig(), &enqueuerStub{}, nil, nil, nil,
		posts, nil, &accountRepoStub{}, &attemptRepoStub{}, nil, nil, primary, nil, &notifyStub{})

	task := newTask(t, queue.TaskTypePublishPost, queue.PublishPostPayload{PostID: 9})
	require.NoError(t, w.HandlePublishPost(context.Background(), task))
	require.Empty(t, primary.calls)
	require.Empty(t, posts.posted)
}

func TestHandlePublishPostSimulatedWithoutAccount(t *testing.T) {
	posts := &postRepoStub{
		byID: map[int64]*models.Post{
			9: {ID: 9, UserID: 5, Status: models.PostStatusScheduled, MediaURL: "https://cdn/p9.png"},
		},
	}
	enq := &enqueuerStub{}
	primary := &publisherStub{platform: models.PlatformInstagram}
	w := queue.NewWorker(testConfig(), enq, nil, nil, nil,
		posts, nil, &accountRepoStub{}, &attemptRepoStub{}, nil, nil, primary, nil, &notifyStub{})

	task := newTask(t, queue.TaskTypePublishPost, queue.PublishPostPayload{PostID: 9})
	require.NoError(t, w.HandlePublishPost(context.Background(), task))

	require.Empty(t, primary.calls)
	require.Equal(t, map[string]any{"simulated_publish": true}, posts.merged)
	require.Equal(t, []int64{9}, posts.posted)
	require.Zero(t, enq.count(queue.TaskTypeRefreshMetrics))
}

func TestHandlePublishPostSuccess(t *testing.T) {
	posts := &postRepoStub{
		byID: map[int64]*models.Post{
			9: {
				ID: 9, UserID: 5, Status: models.PostStatusScheduled,
				MediaURL: "https://cdn/p9.png",
				Caption:  "Fresh roast is here",
				Hashtags: []string{"#coffee", "#morning"},
			},
		},
	}
	enq := &enqueuerStub{}
	primary := &publisherStub{platform: models.PlatformInstagram, postID: "ig_123"}
	accounts := &accountRepoStub{accounts: map[string]*models.SocialAccount{
		models.PlatformInstagram: {ID: 1, UserID: 5, Platform: models.PlatformInstagram},
	}}
	attempts := &attemptRepoStub{}
	notify := &notifyStub{}
	w := queue.NewWorker(testConfig(), enq, nil, nil, nil,
		posts, nil, accounts, attempts, nil, nil, primary, nil, notify)

	task := newTask(t, queue.TaskTypePublishPost, queue.PublishPostPayload{PostID: 9})
	require.NoError(t, w.HandlePublishPost(context.Background(), task))

	require.Len(t, primary.calls, 1)
	require.Equal(t, "Fresh roast is here\n\n#coffee #morning", primary.calls[0].Caption)
	require.Equal(t, "ig_123", posts.platformIDs[models.PlatformInstagram])
	require.Equal(t, []int64{9}, posts.posted)
	require.Equal(t, 1, enq.count(queue.TaskTypeRefreshMetrics))
	require.Len(t, attempts.attempts, 1)
	require.Empty(t, attempts.attempts[0].ErrorMessage)
	require.Contains(t, notify.types, models.NotificationPostPublished)
}

func TestHandlePublishPostPrimaryFailure(t *testing.T) {
	posts := &postRepoStub{
		byID: map[int64]*models.Post{
			9: {ID: 9, UserID: 5, Status: models.PostStatusScheduled, MediaURL: "https://cdn/p9.png"},
		},
	}
	primary := &publisherStub{platform: models.PlatformInstagram, err: errContainerRejected}
	accounts := &accountRepoStub{accounts: map[string]*models.SocialAccount{
		models.PlatformInstagram: {ID: 1, UserID: 5, Platform: models.PlatformInstagram},
	}}
	attempts := &attemptRepoStub{}
	notify := &notifyStub{}
	w := queue.NewWorker(testConfig(), &enqueuerStub{}, nil, nil, nil,
		posts, nil, accounts, attempts, nil, nil, primary, nil, notify)

	task := newTask(t, queue.TaskTypePublishPost, queue.PublishPostPayload{PostID: 9})
	require.Error(t, w.HandlePublishPost(context.Background(), task))

	require.Equal(t, []int64{9}, posts.failed)
	require.Empty(t, posts.posted)
	require.Len(t, attempts.attempts, 1)
	require.NotEmpty(t, attempts.attempts[0].ErrorMessage)
	require.Contains(t, notify.types, models.NotificationPostFailed)
}
