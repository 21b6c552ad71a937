package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	config "github.com/socialmagic/content-engine/configs"
	"github.com/socialmagic/content-engine/internal/apperrors"
	"github.com/socialmagic/content-engine/internal/models"
	"github.com/socialmagic/content-engine/internal/repository"
	"github.com/socialmagic/content-engine/internal/service"
	"github.com/stretchr/testify/require"
)

type postRepoStub struct {
	repository.PostRepository
	post         *models.Post
	transitionOK bool
	rejectOK     bool
	transitions  [][2]string
	rejectedNote string
	countCreated int
}

func (s *postRepoStub) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	return s.post, nil
}

func (s *postRepoStub) TransitionStatus(ctx context.Context, postID int64, from, to string) (bool, error) {
	s.transitions = append(s.transitions, [2]string{from, to})
	return s.transitionOK, nil
}

func (s *postRepoStub) RejectPost(ctx context.Context, postID int64, note string) (bool, error) {
	s.rejectedNote = note
	return s.rejectOK, nil
}

func (s *postRepoStub) CountCreatedInMonth(ctx context.Context, userID int64, year int, month time.Month) (int, error) {
	return s.countCreated, nil
}

type weeklyRepoStub struct {
	repository.WeeklyGenerationRepository
	approvedID int64
	rejectedID int64
}

func (s *weeklyRepoStub) IncrementApproved(ctx context.Context, id int64) error {
	s.approvedID = id
	return nil
}

func (s *weeklyRepoStub) IncrementRejected(ctx context.Context, id int64) error {
	s.rejectedID = id
	return nil
}

func pendingPost(userID int64) *models.Post {
	return &models.Post{
		ID:     10,
		UserID: userID,
		Status: models.PostStatusPending,
		GenerationMetadata: map[string]any{
			"weekly_generation_id": float64(7),
		},
	}
}

func TestApprovePendingPost(t *testing.T) {
	posts := &postRepoStub{post: pendingPost(1), transitionOK: true}
	weekly := &weeklyRepoStub{}
	s := service.NewPostService(config.Config{}, posts, weekly)

	err := s.Approve(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, [][2]string{{models.PostStatusPending, models.PostStatusApproved}}, posts.transitions)
	require.Equal(t, int64(7), weekly.approvedID)
}

func TestApproveNotPending(t *testing.T) {
	posts := &postRepoStub{post: pendingPost(1), transitionOK: false}
	s := service.NewPostService(config.Config{}, posts, &weeklyRepoStub{})

	err := s.Approve(context.Background(), 1, 10)
	require.Error(t, err)

	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
}

func TestApproveUnownedPost(t *testing.T) {
	posts := &postRepoStub{post: pendingPost(2), transitionOK: true}
	s := service.NewPostService(config.Config{}, posts, &weeklyRepoStub{})

	err := s.Approve(context.Background(), 1, 10)
	require.Error(t, err)
	require.Empty(t, posts.transitions)
}

func TestRejectRequiresNote(t *testing.T) {
	posts := &postRepoStub{post: pendingPost(1), rejectOK: true}
	s := service.NewPostService(config.Config{}, posts, &weeklyRepoStub{})

	err := s.Reject(context.Background(), 1, 10, "")
	require.Error(t, err)

	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Empty(t, posts.rejectedNote)
}

func TestRejectPendingPost(t *testing.T) {
	posts := &postRepoStub{post: pendingPost(1), rejectOK: true}
	weekly := &weeklyRepoStub{}
	s := service.NewPostService(config.Config{}, posts, weekly)

	err := s.Reject(context.Background(), 1, 10, "too formal, make it casual")
	require.NoError(t, err)
	require.Equal(t, "too formal, make it casual", posts.rejectedNote)
	require.Equal(t, int64(7), weekly.rejectedID)
}
