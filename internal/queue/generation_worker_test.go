package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/socialmagic/content-engine/internal/models"
	"github.com/socialmagic/content-engine/internal/queue"
	"github.com/socialmagic/content-engine/internal/service"
	"github.com/stretchr/testify/require"
)

func weekOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func TestHandleGenerateUserWeekFanOut(t *testing.T) {
	enq := &enqueuerStub{}
	users := &userRepoStub{user: &models.User{ID: 1, SubscriptionTier: models.TierBasic}}
	profiles := &profileRepoStub{profile: &models.BusinessProfile{UserID: 1, BrandName: "Acme"}}
	campaigns := &campaignRepoStub{active: []*models.Campaign{
		{ID: 3, UserID: 1, PromptTemplate: models.DefaultCampaignTemplate, PostsPerWeek: 3},
	}}
	weekly := &weeklyRepoStub{record: &models.WeeklyGeneration{ID: 7, UserID: 1}}
	w := queue.NewWorker(testConfig(), enq, users, profiles, campaigns,
		&postRepoStub{}, weekly, nil, nil, nil, nil, nil, nil, &notifyStub{})

	task := newTask(t, queue.TaskTypeGenerateUserWeek, queue.GenerateUserWeekPayload{
		UserID:    1,
		WeekStart: weekOf(time.Now().UTC()),
	})
	require.NoError(t, w.HandleGenerateUserWeek(context.Background(), task))

	require.Equal(t, 3, enq.count(queue.TaskTypeGeneratePost))
	require.Equal(t, 1, enq.count(queue.TaskTypeWeeklyDigest))
	require.Equal(t, int64(7), weekly.completedID)
	require.Equal(t, 3, weekly.completedPosts)
}

func TestHandleGenerateUserWeekAlreadyCompleted(t *testing.T) {
	enq := &enqueuerStub{}
	users := &userRepoStub{user: &models.User{ID: 1}}
	weekly := &weeklyRepoStub{record: &models.WeeklyGeneration{ID: 7, UserID: 1, GenerationCompleted: true}}
	w := queue.NewWorker(testConfig(), enq, users, &profileRepoStub{}, &campaignRepoStub{},
		&postRepoStub{}, weekly, nil, nil, nil, nil, nil, nil, &notifyStub{})

	task := newTask(t, queue.TaskTypeGenerateUserWeek, queue.GenerateUserWeekPayload{UserID: 1})
	require.NoError(t, w.HandleGenerateUserWeek(context.Background(), task))

	require.Empty(t, enq.tasks)
	require.Zero(t, weekly.completedID)
}

func TestHandleGenerateUserWeekCreatesDefaultCampaign(t *testing.T) {
	enq := &enqueuerStub{}
	users := &userRepoStub{user: &models.User{ID: 1}}
	profiles := &profileRepoStub{profile: &models.BusinessProfile{UserID: 1}}
	campaigns := &campaignRepoStub{}
	weekly := &weeklyRepoStub{record: &models.WeeklyGeneration{ID: 7, UserID: 1}}
	w := queue.NewWorker(testConfig(), enq, users, profiles, campaigns,
		&postRepoStub{}, weekly, nil, nil, nil, nil, nil, nil, &notifyStub{})

	task := newTask(t, queue.TaskTypeGenerateUserWeek, queue.GenerateUserWeekPayload{UserID: 1})
	require.NoError(t, w.HandleGenerateUserWeek(context.Background(), task))

	require.NotNil(t, campaigns.created)
	require.Equal(t, models.DefaultCampaignTemplate, campaigns.created.PromptTemplate)
	require.Equal(t, models.DefaultPostsPerWeek, campaigns.created.PostsPerWeek)
	require.Equal(t, models.DefaultPostsPerWeek, enq.count(queue.TaskTypeGeneratePost))
}

func TestHandleGeneratePostCreatesPendingItem(t *testing.T) {
	posts := &postRepoStub{}
	users := &userRepoStub{user: &models.User{ID: 1}}
	profiles := &profileRepoStub{profile: &models.BusinessProfile{UserID: 1, BrandName: "Acme"}}
	campaigns := &campaignRepoStub{active: []*models.Campaign{
		{ID: 3, UserID: 1, PromptTemplate: models.DefaultCampaignTemplate},
	}}
	content := &providerStub{result: &service.ContentResult{
		Caption:     "Morning brew, ready to go",
		Hashtags:    []string{"#coffee"},
		ImagePrompt: "steaming cup on a wooden counter",
	}}
	storage := &storageStub{uploadURL: "https://cdn/generated/1/1/abc.png"}
	w := queue.NewWorker(testConfig(), &enqueuerStub{}, users, profiles, campaigns,
		posts, &weeklyRepoStub{}, nil, nil, content, storage, nil, nil, &notifyStub{})

	task := newTask(t, queue.TaskTypeGeneratePost, queue.GeneratePostPayload{
		UserID: 1, CampaignID: 3, WeeklyGenerationID: 7,
	})
	require.NoError(t, w.HandleGeneratePost(context.Background(), task))

	require.Len(t, posts.created, 1)
	created := posts.created[0]
	require.Equal(t, models.PostStatusPending, created.Status)
	require.Equal(t, models.MediaTypeImage, created.MediaType)
	require.Equal(t, "Morning brew, ready to go", created.Caption)
	require.Equal(t, int64(7), created.GenerationMetadata["weekly_generation_id"])
	require.Equal(t, "https://cdn/generated/1/1/abc.png", posts.mediaURL)
}

func TestHandleRegeneratePostReusesRow(t *testing.T) {
	posts := &postRepoStub{
		byID: map[int64]*models.Post{
			42: {
				ID: 42, UserID: 1, Status: models.PostStatusRejected,
				MediaType: models.MediaTypeImage, MediaURL: "https://cdn/old.png",
				PromptUsed: "prompt", RegenerationCount: 1,
			},
		},
	}
	profiles := &profileRepoStub{profile: &models.BusinessProfile{UserID: 1}}
	content := &providerStub{result: &service.ContentResult{
		Caption:     "Casual take on the morning brew",
		Hashtags:    []string{"#coffee"},
		ImagePrompt: "latte art closeup",
	}}
	storage := &storageStub{uploadURL: "https://cdn/new.png"}
	w := queue.NewWorker(testConfig(), &enqueuerStub{}, &userRepoStub{}, profiles, &campaignRepoStub{},
		posts, &weeklyRepoStub{}, nil, nil, content, storage, nil, nil, &notifyStub{})

	task := newTask(t, queue.TaskTypeRegeneratePost, queue.RegeneratePostPayload{
		PostID: 42, RejectionNote: "too formal",
	})
	require.NoError(t, w.HandleRegeneratePost(context.Background(), task))

	require.Equal(t, "too formal", content.feedback)
	require.Contains(t, storage.deleted, "https://cdn/old.png")

	require.NotNil(t, posts.updated)
	require.Equal(t, int64(42), posts.updated.ID)
	require.Equal(t, models.PostStatusPending, posts.updated.Status)
	require.Equal(t, 2, posts.updated.RegenerationCount)
	require.Equal(t, "Casual take on the morning brew", posts.updated.Caption)
	require.Equal(t, "https://cdn/new.png", posts.updated.MediaURL)
	require.Equal(t, "too formal", posts.updated.RejectionNote)
}
