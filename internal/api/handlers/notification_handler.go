package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/socialmagic/content-engine/internal/service"
)

type NotificationHandler struct {
	ns service.NotificationService
}

func NewNotificationHandler(ns service.NotificationService) *NotificationHandler {
	return &NotificationHandler{ns: ns}
}

func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	userID := GetUserID(c)
	limit := c.QueryInt("limit", 0)

	notifications, err := h.ns.List(c.Context(), userID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list notifications",
		})
	}

	return c.Status(fiber.StatusOK).JSON(notifications)
}

func (h *NotificationHandler) MarkNotificationRead(c *fiber.Ctx) error {
	userID := GetUserID(c)
	notificationID := c.QueryInt("id", 0)

	if err := h.ns.MarkRead(c.Context(), userID, int64(notificationID)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to update notification",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
