package queue

import (
	"github.com/hibiken/asynq"
	config "github.com/socialmagic/content-engine/configs"
	"github.com/socialmagic/content-engine/internal/repository"
	"github.com/socialmagic/content-engine/internal/service"
)

// Worker holds the handlers for every pipeline task. All coordination
// between handlers goes through persisted row state plus the queue; there
// is no shared in-process state.
type Worker struct {
	cfg       config.Config
	client    Enqueuer
	users     repository.UserRepository
	profiles  repository.ProfileRepository
	campaigns repository.CampaignRepository
	posts     repository.PostRepository
	weekly    repository.WeeklyGenerationRepository
	accounts  repository.SocialAccountRepository
	attempts  repository.PublishAttemptRepository
	content   service.ContentProvider
	storage   service.MediaStorage
	primary   service.Publisher
	secondary service.Publisher
	notify    service.NotificationService
}

func NewWorker(
	cfg config.Config,
	client Enqueuer,
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	campaigns repository.CampaignRepository,
	posts repository.PostRepository,
	weekly repository.WeeklyGenerationRepository,
	accounts repository.SocialAccountRepository,
	attempts repository.PublishAttemptRepository,
	content service.ContentProvider,
	storage service.MediaStorage,
	primary service.Publisher,
	secondary service.Publisher,
	notify service.NotificationService) *Worker {
	return &Worker{
		cfg:       cfg,
		client:    client,
		users:     users,
		profiles:  profiles,
		campaigns: campaigns,
		posts:     posts,
		weekly:    weekly,
		accounts:  accounts,
		attempts:  attempts,
		content:   content,
		storage:   storage,
		primary:   primary,
		secondary: secondary,
		notify:    notify,
	}
}

func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskTypeGenerateUserWeek, w.HandleGenerateUserWeek)
	mux.HandleFunc(TaskTypeGeneratePost, w.HandleGeneratePost)
	mux.HandleFunc(TaskTypeRegeneratePost, w.HandleRegeneratePost)
	mux.HandleFunc(TaskTypeScheduleApproved, w.HandleScheduleApproved)
	mux.HandleFunc(TaskTypePublishPost, w.HandlePublishPost)
	mux.HandleFunc(TaskTypeRefreshMetrics, w.HandleRefreshMetrics)
	mux.HandleFunc(TaskTypeWeeklyDigest, w.HandleWeeklyDigest)
}
