package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	config "github.com/socialmagic/content-engine/configs"
	"github.com/socialmagic/content-engine/internal/apperrors"
)

// ContentResult is the decoded bundle from one content-generation call.
// Caption and ImagePrompt are required; a response missing either is
// rejected as a provider error instead of propagating partial data.
type ContentResult struct {
	Caption     string
	Hashtags    []string
	ImagePrompt string
	StyleNotes  string
	Metadata    map[string]any
}

type ContentProvider interface {
	GenerateContent(ctx context.Context, prompt string, brand BrandContext, feedback string) (*ContentResult, error)
	GenerateImage(ctx context.Context, prompt string, brand BrandContext) ([]byte, error)
	GenerateVideo(ctx context.Context, prompt string, brand BrandContext) ([]byte, error)
}

const (
	geminiBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	geminiTextModel  = "gemini-1.5-pro"
	geminiImageModel = "imagen-3.0-generate-002"
	geminiVideoModel = "veo-3.0-generate-preview"

	contentTemperature = 0.7
	contentMaxTokens   = 1000
)

type geminiService struct {
	cfg    config.Config
	client *http.Client
}

func NewGeminiService(cfg config.Config) ContentProvider {
	return &geminiService{
		cfg:    cfg,
		client: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (s *geminiService) GenerateContent(ctx context.Context, prompt string, brand BrandContext, feedback string) (*ContentResult, error) {
	fullPrompt := buildContentPrompt(prompt, brand, feedback)

	reqBody := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": fullPrompt}}},
		},
		"generationConfig": map[string]any{
			"temperature":      contentTemperature,
			"maxOutputTokens":  contentMaxTokens,
			"responseMimeType": "application/json",
		},
	}

	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", geminiBaseURL, geminiTextModel, s.cfg.GeminiAPIKey)
	if err := s.post(ctx, url, reqBody, &resp); err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, apperrors.NewProvider("content", errors.New("empty generation response"))
	}

	var decoded struct {
		Caption     string   `json:"caption"`
		Hashtags    []string `json:"hashtags"`
		ImagePrompt string   `json:"image_prompt"`
		StyleNotes  string   `json:"style_notes"`
	}
	text := resp.Candidates[0].Content.Parts[0].Text
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return nil, apperrors.NewProvider("content", fmt.Errorf("malformed response: %w", err))
	}
	if decoded.Caption == "" || decoded.ImagePrompt == "" {
		return nil, apperrors.NewProvider("content", errors.New("response missing caption or image prompt"))
	}

	return &ContentResult{
		Caption:     decoded.Caption,
		Hashtags:    decoded.Hashtags,
		ImagePrompt: decoded.ImagePrompt,
		StyleNotes:  decoded.StyleNotes,
		Metadata: map[string]any{
			"model":       geminiTextModel,
			"temperature": contentTemperature,
		},
	}, nil
}

func (s *geminiService) GenerateImage(ctx context.Context, prompt string, brand BrandContext) ([]byte, error) {
	reqBody := map[string]any{
		"instances": []map[string]string{{"prompt": enhanceMediaPrompt(prompt, brand)}},
		"parameters": map[string]any{
			"sampleCount": 1,
			"aspectRatio": "1:1",
		},
	}

	var resp struct {
		Predictions []struct {
			BytesBase64Encoded string `json:"bytesBase64Encoded"`
		} `json:"predictions"`
	}

	url := fmt.Sprintf("%s/models/%s:predict?key=%s", geminiBaseURL, geminiImageModel, s.cfg.GeminiAPIKey)
	if err := s.post(ctx, url, reqBody, &resp); err != nil {
		return nil, err
	}

	if len(resp.Predictions) == 0 || resp.Predictions[0].BytesBase64Encoded == "" {
		return nil, apperrors.NewProvider("content", errors.New("no image in generation response"))
	}

	data, err := base64.StdEncoding.DecodeString(resp.Predictions[0].BytesBase64Encoded)
	if err != nil {
		return nil, apperrors.NewProvider("content", fmt.Errorf("malformed image payload: %w", err))
	}
	return data, nil
}

// GenerateVideo starts a long-running operation and polls it at a fixed
// interval up to the configured max wait. The poll loop occupies one
// worker slot for its whole duration.
func (s *geminiService) GenerateVideo(ctx context.Context, prompt string, brand BrandContext) ([]byte, error) {
	reqBody := map[string]any{
		"instances": []map[string]string{{"prompt": enhanceMediaPrompt(prompt, brand)}},
	}

	var started struct {
		Name string `json:"name"`
	}
	url := fmt.Sprintf("%s/models/%s:predictLongRunning?key=%s", geminiBaseURL, geminiVideoModel, s.cfg.GeminiAPIKey)
	if err := s.post(ctx, url, reqBody, &started); err != nil {
		return nil, err
	}
	if started.Name == "" {
		return nil, apperrors.NewProvider("content", errors.New("video operation not started"))
	}

	deadline := time.Now().Add(s.cfg.Scheduling.VideoMaxWait)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.cfg.Scheduling.VideoPollInterval):
		}

		var op struct {
			Done     bool `json:"done"`
			Response struct {
				Videos []struct {
					BytesBase64Encoded string `json:"bytesBase64Encoded"`
				} `json:"videos"`
			} `json:"response"`
		}
		opURL := fmt.Sprintf("%s/%s?key=%s", geminiBaseURL, started.Name, s.cfg.GeminiAPIKey)
		if err := s.get(ctx, opURL, &op); err != nil {
			return nil, err
		}

		if !op.Done {
			slog.Info("waiting for video generation", "operation", started.Name)
			continue
		}
		if len(op.Response.Videos) == 0 || op.Response.Videos[0].BytesBase64Encoded == "" {
			return nil, apperrors.NewProvider("content", errors.New("no video in operation response"))
		}
		data, err := base64.StdEncoding.DecodeString(op.Response.Videos[0].BytesBase64Encoded)
		if err != nil {
			return nil, apperrors.NewProvider("content", fmt.Errorf("malformed video payload: %w", err))
		}
		return data, nil
	}

	return nil, &apperrors.TimeoutError{Provider: "content", Op: "video generation"}
}

func (s *geminiService) post(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return s.do(req, out)
}

func (s *geminiService) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return s.do(req, out)
}

func (s *geminiService) do(req *http.Request, out any) error {
	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return apperrors.NewProvider("content", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewProvider("content", err)
	}
	if resp.StatusCode != http.StatusOK {
		return apperrors.NewProvider("content", fmt.Errorf("status %d: %s", resp.StatusCode, data))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.NewProvider("content", fmt.Errorf("malformed response: %w", err))
	}
	return nil
}

func buildContentPrompt(prompt string, brand BrandContext, feedback string) string {
	var b strings.Builder
	b.WriteString("You are a social media content creator for the following brand.\n")
	fmt.Fprintf(&b, "Brand: %s\nVoice: %s\nAudience: %s\n", brand.BrandName, brand.BrandVoice, brand.TargetAudience)
	if brand.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", brand.Industry)
	}
	if len(brand.ContentThemes) > 0 {
		fmt.Fprintf(&b, "Themes: %s\n", strings.Join(brand.ContentThemes, ", "))
	}
	if len(brand.HashtagPreferences) > 0 {
		fmt.Fprintf(&b, "Preferred hashtags: %s\n", strings.Join(brand.HashtagPreferences, " "))
	}
	if brand.AIInstructions != "" {
		fmt.Fprintf(&b, "Additional instructions: %s\n", brand.AIInstructions)
	}
	if feedback != "" {
		fmt.Fprintf(&b, "\nA previous draft was rejected with this feedback, address it: %s\n", feedback)
	}
	b.WriteString("\nRespond with a JSON object with keys caption, hashtags, image_prompt, style_notes.\n")
	fmt.Fprintf(&b, "\nGenerate content for: %s", prompt)
	return b.String()
}

func enhanceMediaPrompt(prompt string, brand BrandContext) string {
	if brand.BrandStyle == "" {
		return prompt
	}
	return fmt.Sprintf("%s. Visual style: %s", prompt, brand.BrandStyle)
}
