package service

import (
	"context"
	"time"

	config "github.com/socialmagic/content-engine/configs"
	"github.com/socialmagic/content-engine/internal/apperrors"
	"github.com/socialmagic/content-engine/internal/models"
	"github.com/socialmagic/content-engine/internal/repository"
)

// SubscriptionService answers the monthly quota question. The check runs
// once per user per discovery pass, not per item; concurrent jobs from
// the same pass may overshoot slightly, which is accepted looseness.
type SubscriptionService interface {
	CheckGenerationQuota(ctx context.Context, user *models.User) error
}

type subscriptionService struct {
	cfg config.Config
	pr  repository.PostRepository
}

func NewSubscriptionService(cfg config.Config, pr repository.PostRepository) SubscriptionService {
	return &subscriptionService{cfg: cfg, pr: pr}
}

func (s *subscriptionService) CheckGenerationQuota(ctx context.Context, user *models.User) error {
	tier, ok := s.cfg.Tiers[user.SubscriptionTier]
	if !ok {
		return &apperrors.QuotaExceededError{UserID: user.ID, Limit: 0}
	}

	now := time.Now().UTC()
	count, err := s.pr.CountCreatedInMonth(ctx, user.ID, now.Year(), now.Month())
	if err != nil {
		return err
	}
	if count >= tier.PostsPerMonth {
		return &apperrors.QuotaExceededError{UserID: user.ID, Limit: tier.PostsPerMonth}
	}
	return nil
}
