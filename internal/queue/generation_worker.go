package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/socialmagic/content-engine/internal/apperrors"
	"github.com/socialmagic/content-engine/internal/models"
	"github.com/socialmagic/content-engine/internal/service"
)

// HandleGenerateUserWeek is the fan-out job: it creates the weekly record
// if needed and enqueues one generation task per desired post. Completion
// is marked at fan-out time; individual items may still fail without
// re-opening the week.
func (w *Worker) HandleGenerateUserWeek(ctx context.Context, task *asynq.Task) error {
	var payload GenerateUserWeekPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	user, found, err := w.users.GetByID(ctx, payload.UserID)
	if err != nil {
		return err
	}
	if !found {
		slog.Error("user not found for weekly generation", "user_id", payload.UserID)
		return fmt.Errorf("user %d not found: %w", payload.UserID, asynq.SkipRetry)
	}

	weekly, err := w.weekly.GetOrCreate(ctx, user.ID, payload.WeekStart)
	if err != nil {
		return err
	}
	if weekly.GenerationCompleted {
		slog.Info("weekly generation already completed", "user_id", user.ID, "week_start", payload.WeekStart)
		return nil
	}

	_, found, err = w.profiles.GetByUserID(ctx, user.ID)
	if err != nil {
		return err
	}
	if !found {
		slog.Error("no business profile for user", "user_id", user.ID)
		return fmt.Errorf("user %d has no business profile: %w", user.ID, asynq.SkipRetry)
	}

	campaigns, err := w.campaigns.ListActiveByUser(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(campaigns) == 0 {
		campaign := &models.Campaign{
			UserID:         user.ID,
			Name:           models.DefaultCampaignName,
			Description:    "Automatically generated weekly content",
			PromptTemplate: models.DefaultCampaignTemplate,
			IsActive:       true,
			PostsPerWeek:   models.DefaultPostsPerWeek,
		}
		id, err := w.campaigns.Create(ctx, nil, campaign)
		if err != nil {
			return err
		}
		campaign.ID = id
		campaigns = []*models.Campaign{campaign}
	}

	enqueued := 0
	for _, campaign := range campaigns {
		for i := 0; i < campaign.PostsPerWeek; i++ {
			err := EnqueueGeneratePost(w.client, GeneratePostPayload{
				UserID:             user.ID,
				CampaignID:         campaign.ID,
				WeeklyGenerationID: weekly.ID,
			})
			if err != nil {
				slog.Error("failed to enqueue generation", "campaign_id", campaign.ID, "error", err)
				continue
			}
			enqueued++
		}
	}

	if err := w.weekly.MarkCompleted(ctx, weekly.ID, enqueued); err != nil {
		return err
	}

	if err := EnqueueWeeklyDigest(w.client, WeeklyDigestPayload{UserID: user.ID, WeeklyGenerationID: weekly.ID}); err != nil {
		slog.Error("failed to enqueue weekly digest", "user_id", user.ID, "error", err)
	}

	slog.Info("weekly generation fanned out", "user_id", user.ID, "posts", enqueued)
	return nil
}

// HandleGeneratePost generates one content item end to end: resolve the
// campaign template, generate the brief and media, create the pending
// row, upload the media. Provider failures before the row exists leave no
// partial record.
func (w *Worker) HandleGeneratePost(ctx context.Context, task *asynq.Task) error {
	var payload GeneratePostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	user, found, err := w.users.GetByID(ctx, payload.UserID)
	if err != nil {
		return err
	}
	campaign, err := w.campaigns.GetByID(ctx, payload.CampaignID)
	if err != nil {
		return err
	}
	profile, profileFound, err := w.profiles.GetByUserID(ctx, payload.UserID)
	if err != nil {
		return err
	}
	if !found || campaign == nil || !profileFound {
		slog.Error("missing data for post generation", "user_id", payload.UserID, "campaign_id", payload.CampaignID)
		return fmt.Errorf("missing generation inputs: %w", asynq.SkipRetry)
	}

	brand := service.BrandContextFromProfile(profile)

	prompt, err := service.RenderTemplate(campaign.PromptTemplate, brand)
	if err != nil {
		var verr *apperrors.ValidationError
		if errors.As(err, &verr) {
			slog.Error("campaign template invalid", "campaign_id", campaign.ID, "error", err)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	result, err := w.content.GenerateContent(ctx, prompt, brand, "")
	if err != nil {
		return err
	}

	// Image is the default cadence; video items come in through explicit
	// campaign settings and regeneration keeps whatever kind the item had.
	mediaType := models.MediaTypeImage

	media, err := w.generateMedia(ctx, mediaType, result.ImagePrompt, brand)
	if err != nil {
		return err
	}

	post := &models.Post{
		UserID:     user.ID,
		MediaType:  mediaType,
		Caption:    result.Caption,
		Hashtags:   result.Hashtags,
		PromptUsed: prompt,
		Status:     models.PostStatusPending,
		GenerationMetadata: map[string]any{
			"content_generation":   result.Metadata,
			"weekly_generation_id": payload.WeeklyGenerationID,
		},
	}
	post.CampaignID.Int64 = campaign.ID
	post.CampaignID.Valid = true

	postID, err := w.posts.Create(ctx, nil, post)
	if err != nil {
		return err
	}

	mediaURL, err := w.storage.UploadGeneratedMedia(ctx, user.ID, postID, mediaType, media)
	if err != nil {
		// The pending row stays behind without media; the retention sweep
		// outside this pipeline reclaims such orphans.
		slog.Error("media upload failed", "post_id", postID, "error", err)
		return err
	}

	thumbnailURL := w.videoThumbnail(ctx, user.ID, postID, mediaType, mediaURL)

	if err := w.posts.SetMedia(ctx, postID, mediaURL, thumbnailURL); err != nil {
		return err
	}

	slog.Info("post generated", "post_id", postID, "user_id", user.ID, "campaign_id", campaign.ID)
	return nil
}

// HandleRegeneratePost re-runs generation for a rejected item with the
// rejection note as corrective feedback. The row identity is reused; only
// content, media, status and the regeneration counter change.
func (w *Worker) HandleRegeneratePost(ctx context.Context, task *asynq.Task) error {
	var payload RegeneratePostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	post, err := w.posts.GetByID(ctx, payload.PostID)
	if err != nil {
		return err
	}
	if post == nil {
		slog.Error("post not found for regeneration", "post_id", payload.PostID)
		return fmt.Errorf("post %d not found: %w", payload.PostID, asynq.SkipRetry)
	}

	profile, found, err := w.profiles.GetByUserID(ctx, post.UserID)
	if err != nil {
		return err
	}
	if !found {
		slog.Error("no business profile for user", "user_id", post.UserID)
		return fmt.Errorf("user %d has no business profile: %w", post.UserID, asynq.SkipRetry)
	}

	brand := service.BrandContextFromProfile(profile)

	result, err := w.content.GenerateContent(ctx, post.PromptUsed, brand, payload.RejectionNote)
	if err != nil {
		return err
	}

	media, err := w.generateMedia(ctx, post.MediaType, result.ImagePrompt, brand)
	if err != nil {
		return err
	}

	// The old objects belong to this item; drop them before overwriting.
	// A stray object on delete failure is logged, not fatal.
	if post.MediaURL != "" {
		if err := w.storage.Delete(ctx, post.MediaURL); err != nil {
			slog.Info("failed to delete old media", "post_id", post.ID, "error", err)
		}
	}
	if post.ThumbnailURL != "" {
		if err := w.storage.Delete(ctx, post.ThumbnailURL); err != nil {
			slog.Info("failed to delete old thumbnail", "post_id", post.ID, "error", err)
		}
	}

	mediaURL, err := w.storage.UploadGeneratedMedia(ctx, post.UserID, post.ID, post.MediaType, media)
	if err != nil {
		slog.Error("media upload failed", "post_id", post.ID, "error", err)
		return err
	}

	post.Caption = result.Caption
	post.Hashtags = result.Hashtags
	post.MediaURL = mediaURL
	post.ThumbnailURL = w.videoThumbnail(ctx, post.UserID, post.ID, post.MediaType, mediaURL)
	post.RejectionNote = payload.RejectionNote
	post.RegenerationCount++
	post.Status = models.PostStatusPending
	if post.GenerationMetadata == nil {
		post.GenerationMetadata = map[string]any{}
	}
	post.GenerationMetadata["regeneration"] = map[string]any{
		"rejection_note":     payload.RejectionNote,
		"regeneration_count": post.RegenerationCount,
		"regenerated_at":     time.Now().UTC().Format(time.RFC3339),
	}

	if err := w.posts.UpdateGenerated(ctx, post); err != nil {
		return err
	}

	slog.Info("post regenerated", "post_id", post.ID, "regeneration_count", post.RegenerationCount)
	return nil
}

func (w *Worker) generateMedia(ctx context.Context, mediaType, prompt string, brand service.BrandContext) ([]byte, error) {
	if mediaType == models.MediaTypeVideo {
		return w.content.GenerateVideo(ctx, prompt, brand)
	}
	return w.content.GenerateImage(ctx, prompt, brand)
}

// videoThumbnail requests a thumbnail for video items. Failure is
// non-fatal: the item just publishes without one.
func (w *Worker) videoThumbnail(ctx context.Context, userID, postID int64, mediaType, mediaURL string) string {
	if mediaType != models.MediaTypeVideo {
		return ""
	}
	thumbnailURL, err := w.storage.GenerateVideoThumbnail(ctx, userID, postID, mediaURL)
	if err != nil {
		slog.Info("thumbnail generation failed", "post_id", postID, "error", err)
		return ""
	}
	return thumbnailURL
}
