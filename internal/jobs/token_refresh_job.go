package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	config "github.com/socialmagic/content-engine/configs"
	"github.com/socialmagic/content-engine/internal/models"
	"github.com/socialmagic/content-engine/internal/repository"
	"github.com/socialmagic/content-engine/internal/service"
)

// TokenRefreshJob renews destination tokens that expire within the
// configured window, a few accounts at a time.
type TokenRefreshJob struct {
	cfg       config.Config
	accounts  repository.SocialAccountRepository
	platforms service.PlatformService
}

func NewTokenRefreshJob(cfg config.Config, accounts repository.SocialAccountRepository, platforms service.PlatformService) *TokenRefreshJob {
	return &TokenRefreshJob{cfg: cfg, accounts: accounts, platforms: platforms}
}

func (j *TokenRefreshJob) Run() {
	ctx := context.Background()
	now := time.Now().UTC()

	accounts, err := j.accounts.ListExpiringBetween(ctx, now, now.Add(j.cfg.Scheduling.TokenRefreshWindow))
	if err != nil {
		slog.Error("token refresh query failed", "error", err)
		return
	}
	if len(accounts) == 0 {
		return
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, 10)

	for _, account := range accounts {
		wg.Add(1)
		sem <- struct{}{}

		go func(account *models.SocialAccount) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := j.platforms.RefreshToken(ctx, account); err != nil {
				slog.Error("token refresh failed", "account_id", account.ID, "platform", account.Platform, "error", err)
				return
			}
			slog.Info("token refreshed", "account_id", account.ID, "platform", account.Platform)
		}(account)
	}

	wg.Wait()
}
