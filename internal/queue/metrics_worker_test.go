package queue_test

import (
	"context"
	"testing"

	"github.com/socialmagic/content-engine/internal/models"
	"github.com/socialmagic/content-engine/internal/queue"
	"github.com/socialmagic/content-engine/internal/service"
	"github.com/stretchr/testify/require"
)

func TestEngagementRate(t *testing.T) {
	rate := queue.EngagementRate(0, models.PostMetrics{Reach: 100, Likes: 10, Comments: 5, Shares: 5})
	require.InDelta(t, 20.0, rate, 0.0001)
}

func TestEngagementRateZeroReachKeepsPrevious(t *testing.T) {
	rate := queue.EngagementRate(12.5, models.PostMetrics{Reach: 0, Likes: 3})
	require.Equal(t, 12.5, rate)
}

func TestHandleRefreshMetricsOverwrites(t *testing.T) {
	posts := &postRepoStub{
		byID: map[int64]*models.Post{
			9: {
				ID: 9, UserID: 5, Status: models.PostStatusPosted,
				InstagramPostID: "ig_123", EngagementRate: 5,
				Likes: 1, Reach: 10,
			},
		},
	}
	primary := &publisherStub{
		platform: models.PlatformInstagram,
		insights: &service.Insights{Impressions: 200, Reach: 100, Likes: 10, Comments: 5, Shares: 5},
	}
	accounts := &accountRepoStub{accounts: map[string]*models.SocialAccount{
		models.PlatformInstagram: {ID: 1, UserID: 5, Platform: models.PlatformInstagram},
	}}
	w := queue.NewWorker(testConfig(), &enqueuerStub{}, nil, nil, nil,
		posts, nil, accounts, nil, nil, nil, primary, nil, &notifyStub{})

	task := newTask(t, queue.TaskTypeRefreshMetrics, queue.RefreshMetricsPayload{PostID: 9})
	require.NoError(t, w.HandleRefreshMetrics(context.Background(), task))

	require.Equal(t, int64(9), posts.metricsID)
	require.Equal(t, models.PostMetrics{Impressions: 200, Reach: 100, Likes: 10, Comments: 5, Shares: 5}, posts.metrics)
	require.InDelta(t, 20.0, posts.rate, 0.0001)
}

func TestHandleRefreshMetricsZeroReachKeepsRate(t *testing.T) {
	posts := &postRepoStub{
		byID: map[int64]*models.Post{
			9: {
				ID: 9, UserID: 5, Status: models.PostStatusPosted,
				InstagramPostID: "ig_123", EngagementRate: 12.5,
			},
		},
	}
	primary := &publisherStub{
		platform: models.PlatformInstagram,
		insights: &service.Insights{Reach: 0, Likes: 3},
	}
	accounts := &accountRepoStub{accounts: map[string]*models.SocialAccount{
		models.PlatformInstagram: {ID: 1, UserID: 5, Platform: models.PlatformInstagram},
	}}
	w := queue.NewWorker(testConfig(), &enqueuerStub{}, nil, nil, nil,
		posts, nil, accounts, nil, nil, nil, primary, nil, &notifyStub{})

	task := newTask(t, queue.TaskTypeRefreshMetrics, queue.RefreshMetricsPayload{PostID: 9})
	require.NoError(t, w.HandleRefreshMetrics(context.Background(), task))

	require.Equal(t, 12.5, posts.rate)
}

func TestHandleRefreshMetricsSkipsUnposted(t *testing.T) {
	posts := &postRepoStub{
		byID: map[int64]*models.Post{
			9: {ID: 9, UserID: 5, Status: models.PostStatusPending},
		},
	}
	w := queue.NewWorker(testConfig(), &enqueuerStub{}, nil, nil, nil,
		posts, nil, &accountRepoStub{}, nil, nil, nil, &publisherStub{platform: models.PlatformInstagram}, nil, &notifyStub{})

	task := newTask(t, queue.TaskTypeRefreshMetrics, queue.RefreshMetricsPayload{PostID: 9})
	require.NoError(t, w.HandleRefreshMetrics(context.Background(), task))
	require.Zero(t, posts.metricsID)
}
