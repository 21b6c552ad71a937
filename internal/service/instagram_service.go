package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/socialmagic/content-engine/configs"
	"github.com/socialmagic/content-engine/internal/apperrors"
	"github.com/socialmagic/content-engine/internal/models"
	"github.com/socialmagic/content-engine/pkg/utils"
)

type instagramService struct {
	cfg    config.Config
	client *http.Client
}

func NewInstagramService(cfg config.Config) Publisher {
	return &instagramService{
		cfg:    cfg,
		client: &http.Client{Timeout: time.Minute},
	}
}

func (ig *instagramService) Platform() string { return models.PlatformInstagram }

// Publish runs the two-step Graph flow: create a media container for the
// hosted media URL, then publish the container.
func (ig *instagramService) Publish(ctx context.Context, account *models.SocialAccount, mediaURL, caption string) (string, error) {
	token, err := utils.Decrypt(account.AccessToken, []byte(ig.cfg.SecretKey))
	if err != nil {
		return "", apperrors.NewProvider(models.PlatformInstagram, err)
	}

	containerID, err := ig.createContainer(ctx, account.AccountID, token, mediaURL, caption)
	if err != nil {
		return "", err
	}

	return ig.publishContainer(ctx, account.AccountID, token, containerID)
}

func (ig *instagramService) createContainer(ctx context.Context, accountID, token, mediaURL, caption string) (string, error) {
	form := url.Values{}
	form.Set("image_url", mediaURL)
	form.Set("caption", caption)
	form.Set("access_token", token)

	endpoint := fmt.Sprintf("%s/%s/media", graphBaseURL, accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp struct {
		ID string `json:"id"`
	}
	if err := graphRequest(ctx, ig.client, models.PlatformInstagram, req, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", apperrors.NewProvider(models.PlatformInstagram, errors.New("no container id in response"))
	}
	return resp.ID, nil
}

func (ig *instagramService) publishContainer(ctx context.Context, accountID, token, containerID string) (string, error) {
	form := url.Values{}
	form.Set("creation_id", containerID)
	form.Set("access_token", token)

	endpoint := fmt.Sprintf("%s/%s/media_publish", graphBaseURL, accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp struct {
		ID string `json:"id"`
	}
	if err := graphRequest(ctx, ig.client, models.PlatformInstagram, req, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", apperrors.NewProvider(models.PlatformInstagram, errors.New("no media id in response"))
	}
	return resp.ID, nil
}

func (ig *instagramService) GetInsights(ctx context.Context, account *models.SocialAccount, platformPostID string) (*Insights, error) {
	token, err := utils.Decrypt(account.AccessToken, []byte(ig.cfg.SecretKey))
	if err != nil {
		return nil, apperrors.NewProvider(models.PlatformInstagram, err)
	}

	endpoint := fmt.Sprintf("%s/%s/insights?metric=impressions,reach,likes,comments,shares&access_token=%s",
		graphBaseURL, platformPostID, url.QueryEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var resp insightsResponse
	if err := graphRequest(ctx, ig.client, models.PlatformInstagram, req, &resp); err != nil {
		return nil, err
	}
	return resp.toInsights(), nil
}
