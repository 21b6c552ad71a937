package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/socialmagic/content-engine/internal/queue"
	"github.com/socialmagic/content-engine/internal/service"
	"github.com/socialmagic/content-engine/internal/transfer"
)

type PostHandler struct {
	s      service.PostService
	client queue.Enqueuer
}

func NewPostHandler(service service.PostService, client queue.Enqueuer) *PostHandler {
	return &PostHandler{s: service, client: client}
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)
	status := c.Query("status")

	if postID != 0 {
		post, err := h.s.PostInfo(c.Context(), userID, int64(postID))
		if err != nil {
			return c.Status(errorStatus(err)).JSON(fiber.Map{
				"error": "Unable to fetch post",
			})
		}
		return c.Status(fiber.StatusOK).JSON(post)
	}

	posts, err := h.s.List(c.Context(), userID, status)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

// ListOverduePosts returns scheduled posts whose slot passed outside the
// sweep window, so they can be re-approved into a fresh slot.
func (h *PostHandler) ListOverduePosts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	posts, err := h.s.ListOverdue(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list overdue posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) ApprovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var approval transfer.PostApproval
	if err := c.BodyParser(&approval); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	if err := h.s.Approve(c.Context(), userID, approval.PostID); err != nil {
		return c.Status(errorStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	err := queue.EnqueueScheduleApproved(h.client, queue.ScheduleApprovedPayload{UserID: userID})
	if err != nil {
		slog.Error("failed to enqueue scheduling", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Approved, but scheduling could not be queued",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post approved",
	})
}

func (h *PostHandler) RejectPost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var rejection transfer.PostRejection
	if err := c.BodyParser(&rejection); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	if err := h.s.Reject(c.Context(), userID, rejection.PostID, rejection.Note); err != nil {
		return c.Status(errorStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	err := queue.EnqueueRegeneratePost(h.client, queue.RegeneratePostPayload{
		PostID:        rejection.PostID,
		RejectionNote: rejection.Note,
	})
	if err != nil {
		slog.Error("failed to enqueue regeneration", "post_id", rejection.PostID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Rejected, but regeneration could not be queued",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post rejected, regeneration queued",
	})
}
