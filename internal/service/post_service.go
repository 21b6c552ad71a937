package service

import (
	"context"
	"log/slog"
	"time"

	config "github.com/socialmagic/content-engine/configs"
	"github.com/socialmagic/content-engine/internal/apperrors"
	"github.com/socialmagic/content-engine/internal/models"
	"github.com/socialmagic/content-engine/internal/repository"
)

// PostService covers the human side of the lifecycle: review actions on
// pending posts and listing. Approval only marks intent; assigning a
// publish slot is the publication scheduler's job.
type PostService interface {
	Approve(ctx context.Context, userID, postID int64) error
	Reject(ctx context.Context, userID, postID int64, note string) error
	List(ctx context.Context, userID int64, status string) ([]*models.Post, error)
	ListOverdue(ctx context.Context, userID int64) ([]*models.Post, error)
	PostInfo(ctx context.Context, userID, postID int64) (*models.Post, error)
}

type postService struct {
	cfg config.Config
	pr  repository.PostRepository
	wg  repository.WeeklyGenerationRepository
}

func NewPostService(cfg config.Config, pr repository.PostRepository, wg repository.WeeklyGenerationRepository) PostService {
	return &postService{cfg: cfg, pr: pr, wg: wg}
}

func (s *postService) Approve(ctx context.Context, userID, postID int64) error {
	post, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return err
	}

	ok, err := s.pr.TransitionStatus(ctx, postID, models.PostStatusPending, models.PostStatusApproved)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewValidation("status", "post is not pending review")
	}

	s.bumpWeeklyCounter(ctx, post, s.wg.IncrementApproved)
	return nil
}

func (s *postService) Reject(ctx context.Context, userID, postID int64, note string) error {
	if note == "" {
		return apperrors.NewValidation("note", "rejection requires a note")
	}

	post, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return err
	}

	ok, err := s.pr.RejectPost(ctx, postID, note)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewValidation("status", "post is not pending review")
	}

	s.bumpWeeklyCounter(ctx, post, s.wg.IncrementRejected)
	return nil
}

func (s *postService) ownedPost(ctx context.Context, userID, postID int64) (*models.Post, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil || post.UserID != userID {
		return nil, apperrors.NewValidation("post_id", "post does not exist")
	}
	return post, nil
}

// bumpWeeklyCounter updates the review counters on the post's weekly
// record. Best-effort: a missing reference only loses a dashboard count.
func (s *postService) bumpWeeklyCounter(ctx context.Context, post *models.Post, inc func(context.Context, int64) error) {
	raw, ok := post.GenerationMetadata["weekly_generation_id"]
	if !ok {
		return
	}
	id, ok := raw.(float64)
	if !ok {
		return
	}
	if err := inc(ctx, int64(id)); err != nil {
		slog.Info(err.Error())
	}
}

func (s *postService) List(ctx context.Context, userID int64, status string) ([]*models.Post, error) {
	return s.pr.ListByUser(ctx, userID, status)
}

// ListOverdue surfaces scheduled posts the publish sweep will no longer
// pick up, so an operator can re-schedule them explicitly.
func (s *postService) ListOverdue(ctx context.Context, userID int64) ([]*models.Post, error) {
	cutoff := time.Now().UTC().Add(-s.cfg.Scheduling.PublishSweepInterval)
	return s.pr.ListOverdue(ctx, userID, cutoff)
}

func (s *postService) PostInfo(ctx context.Context, userID, postID int64) (*models.Post, error) {
	return s.ownedPost(ctx, userID, postID)
}
