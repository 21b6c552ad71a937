package service_test

import (
	"context"
	"errors"
	"testing"

	config "github.com/socialmagic/content-engine/configs"
	"github.com/socialmagic/content-engine/internal/apperrors"
	"github.com/socialmagic/content-engine/internal/models"
	"github.com/socialmagic/content-engine/internal/service"
	"github.com/stretchr/testify/require"
)

func quotaConfig() config.Config {
	return config.Config{
		Tiers: map[string]config.Tier{
			"basic": {PostsPerMonth: 25},
			"pro":   {PostsPerMonth: 30},
		},
	}
}

func TestQuotaAllowsUnderLimit(t *testing.T) {
	posts := &postRepoStub{countCreated: 24}
	s := service.NewSubscriptionService(quotaConfig(), posts)

	user := &models.User{ID: 1, SubscriptionTier: models.TierBasic}
	require.NoError(t, s.CheckGenerationQuota(context.Background(), user))
}

func TestQuotaBlocksAtLimit(t *testing.T) {
	posts := &postRepoStub{countCreated: 25}
	s := service.NewSubscriptionService(quotaConfig(), posts)

	user := &models.User{ID: 1, SubscriptionTier: models.TierBasic}
	err := s.CheckGenerationQuota(context.Background(), user)
	require.Error(t, err)

	var qerr *apperrors.QuotaExceededError
	require.True(t, errors.As(err, &qerr))
	require.Equal(t, 25, qerr.Limit)
}

func TestQuotaUnknownTier(t *testing.T) {
	posts := &postRepoStub{}
	s := service.NewSubscriptionService(quotaConfig(), posts)

	user := &models.User{ID: 1, SubscriptionTier: "enterprise"}
	err := s.CheckGenerationQuota(context.Background(), user)

	var qerr *apperrors.QuotaExceededError
	require.True(t, errors.As(err, &qerr))
}
