package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/socialmagic/content-engine/internal/models"
	"github.com/socialmagic/content-engine/internal/repository"
	"github.com/socialmagic/content-engine/internal/service"
	"github.com/socialmagic/content-engine/internal/transfer"
)

type CampaignHandler struct {
	cr repository.CampaignRepository
}

func NewCampaignHandler(cr repository.CampaignRepository) *CampaignHandler {
	return &CampaignHandler{cr: cr}
}

func (h *CampaignHandler) CreateCampaign(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var creation transfer.CampaignCreation
	if err := c.BodyParser(&creation); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	if creation.Name == "" {
		creation.Name = models.DefaultCampaignName
	}
	if creation.PromptTemplate == "" {
		creation.PromptTemplate = models.DefaultCampaignTemplate
	}
	if creation.PostsPerWeek <= 0 {
		creation.PostsPerWeek = models.DefaultPostsPerWeek
	}

	// Reject unknown placeholders here instead of letting them fail every
	// generation task later.
	if _, err := service.RenderTemplate(creation.PromptTemplate, service.BrandContext{}); err != nil {
		return c.Status(errorStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	id, err := h.cr.Create(c.Context(), nil, &models.Campaign{
		UserID:         userID,
		Name:           creation.Name,
		Description:    creation.Description,
		PromptTemplate: creation.PromptTemplate,
		IsActive:       true,
		PostsPerWeek:   creation.PostsPerWeek,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to create campaign",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id":      id,
		"message": "Campaign created",
	})
}

func (h *CampaignHandler) ListCampaigns(c *fiber.Ctx) error {
	userID := GetUserID(c)

	campaigns, err := h.cr.ListByUser(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list campaigns",
		})
	}

	return c.Status(fiber.StatusOK).JSON(campaigns)
}

func (h *CampaignHandler) DeactivateCampaign(c *fiber.Ctx) error {
	userID := GetUserID(c)
	campaignID := c.QueryInt("id", 0)

	if err := h.cr.Deactivate(c.Context(), int64(campaignID), userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to deactivate campaign",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
