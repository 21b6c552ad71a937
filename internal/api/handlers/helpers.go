package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/socialmagic/content-engine/internal/apperrors"
)

func GetUserID(c *fiber.Ctx) int64 {
	userID, _ := strconv.Atoi(c.Locals("user_id").(string))
	return int64(userID)
}

// errorStatus maps review and input errors to 400 so clients can tell a
// bad request apart from a broken server.
func errorStatus(err error) int {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}
