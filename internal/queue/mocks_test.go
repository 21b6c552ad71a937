package queue_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	config "github.com/socialmagic/content-engine/configs"
	"github.com/socialmagic/content-engine/internal/models"
	"github.com/socialmagic/content-engine/internal/repository"
	"github.com/socialmagic/content-engine/internal/service"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		Scheduling: config.Scheduling{
			PublishSweepInterval: 15 * time.Minute,
			PublishHourUTC:       10,
			MetricsDelay:         time.Hour,
		},
	}
}

func newTask(t *testing.T, taskType string, payload any) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(taskType, data)
}

type enqueuerStub struct {
	tasks []*asynq.Task
}

func (e *enqueuerStub) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	e.tasks = append(e.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func (e *enqueuerStub) count(taskType string) int {
	n := 0
	for _, task := range e.tasks {
		if task.Type() == taskType {
			n++
		}
	}
	return n
}

type scheduledSlot struct {
	PostID int64
	At     time.Time
}

type postRepoStub struct {
	repository.PostRepository
	byID        map[int64]*models.Post
	approved    []*models.Post
	created     []*models.Post
	scheduled   []scheduledSlot
	posted      []int64
	failed      []int64
	merged      map[string]any
	platformIDs map[string]string
	mediaURL    string
	updated     *models.Post
	metrics     models.PostMetrics
	rate        float64
	metricsID   int64
}

func (s *postRepoStub) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	return s.byID[id], nil
}

func (s *postRepoStub) ListApprovedUnscheduled(ctx context.Context, userID int64) ([]*models.Post, error) {
	return s.approved, nil
}

func (s *postRepoStub) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	post.ID = int64(len(s.created) + 1)
	s.created = append(s.created, post)
	return post.ID, nil
}

func (s *postRepoStub) Schedule(ctx context.Context, postID int64, at time.Time) (bool, error) {
	s.scheduled = append(s.scheduled, scheduledSlot{PostID: postID, At: at})
	return true, nil
}

func (s *postRepoStub) MarkPosted(ctx context.Context, postID int64, postedAt time.Time) error {
	s.posted = append(s.posted, postID)
	return nil
}

func (s *postRepoStub) MarkFailed(ctx context.Context, postID int64) error {
	s.failed = append(s.failed, postID)
	return nil
}

func (s *postRepoStub) MergeMetadata(ctx context.Context, postID int64, extra map[string]any) error {
	s.merged = extra
	return nil
}

func (s *postRepoStub) SetPlatformPostID(ctx context.Context, postID int64, platform, platformPostID string) error {
	if s.platformIDs == nil {
		s.platformIDs = map[string]string{}
	}
	s.platformIDs[platform] = platformPostID
	return nil
}

func (s *postRepoStub) SetMedia(ctx context.Context, postID int64, mediaURL, thumbnailURL string) error {
	s.mediaURL = mediaURL
	return nil
}

func (s *postRepoStub) UpdateGenerated(ctx context.Context, post *models.Post) error {
	s.updated = post
	return nil
}

func (s *postRepoStub) UpdateMetrics(ctx context.Context, postID int64, m models.PostMetrics, engagementRate float64, at time.Time) error {
	s.metricsID = postID
	s.metrics = m
	s.rate = engagementRate
	return nil
}

type userRepoStub struct {
	repository.UserRepository
	user *models.User
}

func (s *userRepoStub) GetByID(ctx context.Context, id int64) (*models.User, bool, error) {
	return s.user, s.user != nil, nil
}

type profileRepoStub struct {
	repository.ProfileRepository
	profile *models.BusinessProfile
}

func (s *profileRepoStub) GetByUserID(ctx context.Context, userID int64) (*models.BusinessProfile, bool, error) {
	return s.profile, s.profile != nil, nil
}

type campaignRepoStub struct {
	repository.CampaignRepository
	active  []*models.Campaign
	created *models.Campaign
}

func (s *campaignRepoStub) ListActiveByUser(ctx context.Context, userID int64) ([]*models.Campaign, error) {
	return s.active, nil
}

func (s *campaignRepoStub) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	for _, c := range s.active {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (s *campaignRepoStub) Create(ctx context.Context, tx *sql.Tx, campaign *models.Campaign) (int64, error) {
	s.created = campaign
	return 99, nil
}

type weeklyRepoStub struct {
	repository.WeeklyGenerationRepository
	record         *models.WeeklyGeneration
	completedID    int64
	completedPosts int
	notifiedID     int64
}

func (s *weeklyRepoStub) GetOrCreate(ctx context.Context, userID int64, weekStart time.Time) (*models.WeeklyGeneration, error) {
	return s.record, nil
}

func (s *weeklyRepoStub) GetByID(ctx context.Context, id int64) (*models.WeeklyGeneration, error) {
	return s.record, nil
}

func (s *weeklyRepoStub) MarkCompleted(ctx context.Context, id int64, postsGenerated int) error {
	s.completedID = id
	s.completedPosts = postsGenerated
	return nil
}

func (s *weeklyRepoStub) MarkNotificationSent(ctx context.Context, id int64) error {
	s.notifiedID = id
	return nil
}

type accountRepoStub struct {
	repository.SocialAccountRepository
	accounts map[string]*models.SocialAccount
}

func (s *accountRepoStub) GetConnected(ctx context.Context, userID int64, platform string) (*models.SocialAccount, error) {
	return s.accounts[platform], nil
}

type attemptRepoStub struct {
	repository.PublishAttemptRepository
	attempts []*models.PublishAttempt
}

func (s *attemptRepoStub) Create(ctx context.Context, attempt *models.PublishAttempt) (int64, error) {
	s.attempts = append(s.attempts, attempt)
	return int64(len(s.attempts)), nil
}

type providerStub struct {
	result   *service.ContentResult
	err      error
	feedback string
}

func (s *providerStub) GenerateContent(ctx context.Context, prompt string, brand service.BrandContext, feedback string) (*service.ContentResult, error) {
	s.feedback = feedback
	return s.result, s.err
}

func (s *providerStub) GenerateImage(ctx context.Context, prompt string, brand service.BrandContext) ([]byte, error) {
	return []byte("image-bytes"), nil
}

func (s *providerStub) GenerateVideo(ctx context.Context, prompt string, brand service.BrandContext) ([]byte, error) {
	return []byte("video-bytes"), nil
}

type storageStub struct {
	uploadURL string
	deleted   []string
}

func (s *storageStub) UploadGeneratedMedia(ctx context.Context, userID, postID int64, mediaType string, data []byte) (string, error) {
	return s.uploadURL, nil
}

func (s *storageStub) GenerateVideoThumbnail(ctx context.Context, userID, postID int64, videoURL string) (string, error) {
	return s.uploadURL + ".thumb.jpg", nil
}

func (s *storageStub) Delete(ctx context.Context, url string) error {
	s.deleted = append(s.deleted, url)
	return nil
}

type publishedCall struct {
	MediaURL string
	Caption  string
}

type publisherStub struct {
	platform string
	postID   string
	err      error
	insights *service.Insights
	calls    []publishedCall
}

func (s *publisherStub) Platform() string { return s.platform }

func (s *publisherStub) Publish(ctx context.Context, account *models.SocialAccount, mediaURL, caption string) (string, error) {
	s.calls = append(s.calls, publishedCall{MediaURL: mediaURL, Caption: caption})
	return s.postID, s.err
}

func (s *publisherStub) GetInsights(ctx context.Context, account *models.SocialAccount, platformPostID string) (*service.Insights, error) {
	return s.insights, nil
}

type notifyStub struct {
	types []string
}

func (s *notifyStub) Notify(ctx context.Context, userID int64, notificationType, title, message string, data map[string]any) {
	s.types = append(s.types, notificationType)
}

func (s *notifyStub) List(ctx context.Context, userID int64, limit int) ([]*models.Notification, error) {
	return nil, nil
}

func (s *notifyStub) MarkRead(ctx context.Context, userID, notificationID int64) error {
	return nil
}
