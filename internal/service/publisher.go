package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/socialmagic/content-engine/internal/apperrors"
	"github.com/socialmagic/content-engine/internal/models"
)

// Insights is one performance snapshot for a published post.
type Insights struct {
	Impressions int64
	Reach       int64
	Likes       int64
	Comments    int64
	Shares      int64
}

// Publisher is the per-platform publish capability: push a caption+media
// to an account, later pull performance numbers for the returned post id.
type Publisher interface {
	Platform() string
	Publish(ctx context.Context, account *models.SocialAccount, mediaURL, caption string) (string, error)
	GetInsights(ctx context.Context, account *models.SocialAccount, platformPostID string) (*Insights, error)
}

const graphBaseURL = "https://graph.facebook.com/v19.0"

// graphRequest runs one Graph API call and decodes the JSON response.
// Shared by the Instagram and Facebook publishers.
func graphRequest(ctx context.Context, client *http.Client, platform string, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return apperrors.NewProvider(platform, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewProvider(platform, err)
	}
	if resp.StatusCode != http.StatusOK {
		return apperrors.NewProvider(platform, fmt.Errorf("status %d: %s", resp.StatusCode, data))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.NewProvider(platform, fmt.Errorf("malformed response: %w", err))
	}
	return nil
}

// insightsResponse is the Graph insights wire shape shared by both
// platforms: a list of named metrics, each with one value.
type insightsResponse struct {
	Data []struct {
		Name   string `json:"name"`
		Values []struct {
			Value int64 `json:"value"`
		} `json:"values"`
	} `json:"data"`
}

func (r *insightsResponse) toInsights() *Insights {
	var in Insights
	for _, metric := range r.Data {
		if len(metric.Values) == 0 {
			continue
		}
		value := metric.Values[0].Value
		switch metric.Name {
		case "impressions":
			in.Impressions = value
		case "reach":
			in.Reach = value
		case "likes":
			in.Likes = value
		case "comments":
			in.Comments = value
		case "shares":
			in.Shares = value
		}
	}
	return &in
}
