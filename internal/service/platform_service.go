package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	config "github.com/socialmagic/content-engine/configs"
	"github.com/socialmagic/content-engine/internal/apperrors"
	"github.com/socialmagic/content-engine/internal/models"
	"github.com/socialmagic/content-engine/internal/repository"
	"github.com/socialmagic/content-engine/pkg/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
)

// PlatformService handles connecting destination accounts and keeping
// their tokens fresh. Publishing itself lives in the Publisher
// implementations.
type PlatformService interface {
	AuthURL(state string) string
	HandleCallback(ctx context.Context, userID int64, code string) error
	List(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	Disconnect(ctx context.Context, userID, accountID int64) error
	RefreshToken(ctx context.Context, account *models.SocialAccount) error
}

type platformService struct {
	cfg    config.Config
	sa     repository.SocialAccountRepository
	client *http.Client
}

func NewPlatformService(cfg config.Config, sa repository.SocialAccountRepository) PlatformService {
	return &platformService{
		cfg:    cfg,
		sa:     sa,
		client: &http.Client{Timeout: time.Minute},
	}
}

func (s *platformService) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.FacebookClientID,
		ClientSecret: s.cfg.FacebookClientSecret,
		RedirectURL:  s.cfg.FacebookRedirectURI,
		Scopes: []string{
			"pages_manage_posts", "pages_read_engagement",
			"instagram_basic", "instagram_content_publish",
		},
		Endpoint: facebook.Endpoint,
	}
}

func (s *platformService) AuthURL(state string) string {
	return s.oauthConfig().AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (s *platformService) HandleCallback(ctx context.Context, userID int64, code string) error {
	if code == "" {
		return apperrors.NewValidation("code", "missing authorization code")
	}

	token, err := s.oauthConfig().Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return apperrors.NewProvider(models.PlatformFacebook, err)
	}

	accountID, username, err := s.fetchIdentity(ctx, token.AccessToken)
	if err != nil {
		return err
	}

	encrypted, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	expiresAt := token.Expiry
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(60 * 24 * time.Hour)
	}

	// One Facebook grant covers both destinations; the page account is
	// the primary carrier of the token.
	for _, platform := range []string{models.PlatformInstagram, models.PlatformFacebook} {
		account := &models.SocialAccount{
			UserID:          userID,
			Platform:        platform,
			AccountID:       accountID,
			AccountUsername: username,
			AccessToken:     encrypted,
			RefreshToken:    encrypted,
			TokenExpiresAt:  expiresAt,
		}
		if _, err := s.sa.Create(ctx, nil, account); err != nil {
			return err
		}
	}
	return nil
}

func (s *platformService) fetchIdentity(ctx context.Context, token string) (string, string, error) {
	endpoint := fmt.Sprintf("%s/me?fields=id,name&access_token=%s", graphBaseURL, url.QueryEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", "", apperrors.NewProvider(models.PlatformFacebook, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", apperrors.NewProvider(models.PlatformFacebook, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", apperrors.NewProvider(models.PlatformFacebook, fmt.Errorf("status %d: %s", resp.StatusCode, data))
	}

	var identity struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &identity); err != nil {
		return "", "", apperrors.NewProvider(models.PlatformFacebook, err)
	}
	if identity.ID == "" {
		return "", "", apperrors.NewProvider(models.PlatformFacebook, errors.New("no account id in identity response"))
	}
	return identity.ID, identity.Name, nil
}

func (s *platformService) List(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	return s.sa.ListByUser(ctx, userID)
}

func (s *platformService) Disconnect(ctx context.Context, userID, accountID int64) error {
	return s.sa.Disconnect(ctx, accountID, userID)
}

// RefreshToken exchanges the stored token for a fresh long-lived one.
func (s *platformService) RefreshToken(ctx context.Context, account *models.SocialAccount) error {
	current, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/oauth/access_token?grant_type=fb_exchange_token&client_id=%s&client_secret=%s&fb_exchange_token=%s",
		graphBaseURL, url.QueryEscape(s.cfg.FacebookClientID),
		url.QueryEscape(s.cfg.FacebookClientSecret), url.QueryEscape(current))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := graphRequest(ctx, s.client, account.Platform, req, &resp); err != nil {
		return err
	}
	if resp.AccessToken == "" {
		return apperrors.NewProvider(account.Platform, errors.New("no token in refresh response"))
	}

	encrypted, err := utils.Encrypt([]byte(resp.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}
	return s.sa.UpdateTokens(ctx, account.ID, encrypted, encrypted, GetExpiresAt(resp.ExpiresIn))
}
