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

type facebookService struct {
	cfg    config.Config
	client *http.Client
}

func NewFacebookService(cfg config.Config) Publisher {
	return &facebookService{
		cfg:    cfg,
		client: &http.Client{Timeout: time.Minute},
	}
}

func (fb *facebookService) Platform() string { return models.PlatformFacebook }

// Publish posts the hosted media to the connected page's photo feed.
func (fb *facebookService) Publish(ctx context.Context, account *models.SocialAccount, mediaURL, caption string) (string, error) {
	token, err := utils.Decrypt(account.AccessToken, []byte(fb.cfg.SecretKey))
	if err != nil {
		return "", apperrors.NewProvider(models.PlatformFacebook, err)
	}

	form := url.Values{}
	form.Set("url", mediaURL)
	form.Set("message", caption)
	form.Set("access_token", token)

	endpoint := fmt.Sprintf("%s/%s/photos", graphBaseURL, account.AccountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp struct {
		PostID string `json:"post_id"`
		ID     string `json:"id"`
	}
	if err := graphRequest(ctx, fb.client, models.PlatformFacebook, req, &resp); err != nil {
		return "", err
	}
	if resp.PostID == "" && resp.ID == "" {
		return "", apperrors.NewProvider(models.PlatformFacebook, errors.New("no post id in response"))
	}
	if resp.PostID != "" {
		return resp.PostID, nil
	}
	return resp.ID, nil
}

func (fb *facebookService) GetInsights(ctx context.Context, account *models.SocialAccount, platformPostID string) (*Insights, error) {
	token, err := utils.Decrypt(account.AccessToken, []byte(fb.cfg.SecretKey))
	if err != nil {
		return nil, apperrors.NewProvider(models.PlatformFacebook, err)
	}

	endpoint := fmt.Sprintf("%s/%s/insights?metric=post_impressions,post_impressions_unique,post_reactions_like_total&access_token=%s",
		graphBaseURL, platformPostID, url.QueryEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var resp insightsResponse
	if err := graphRequest(ctx, fb.client, models.PlatformFacebook, req, &resp); err != nil {
		return nil, err
	}

	var in Insights
	for _, metric := range resp.Data {
		if len(metric.Values) == 0 {
			continue
		}
		value := metric.Values[0].Value
		switch metric.Name {
		case "post_impressions":
			in.Impressions = value
		case "post_impressions_unique":
			in.Reach = value
		case "post_reactions_like_total":
			in.Likes = value
		}
	}
	return &in, nil
}
