package handlers

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	config "github.com/socialmagic/content-engine/configs"
	"github.com/socialmagic/content-engine/internal/service"
	"github.com/socialmagic/content-engine/pkg/utils"
)

type PlatformHandler struct {
	ps  service.PlatformService
	cfg config.Config
}

func NewPlatformHandler(ps service.PlatformService, cfg config.Config) *PlatformHandler {
	return &PlatformHandler{ps: ps, cfg: cfg}
}

// AddSocialAccount starts the OAuth flow. The caller's session token is
// carried through the state parameter so the callback can attribute the
// grant.
func (h *PlatformHandler) AddSocialAccount(c *fiber.Ctx) error {
	state := c.Cookies(h.cfg.CookieName)
	return c.Redirect(h.ps.AuthURL(state))
}

func (h *PlatformHandler) CallbackHandler(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")

	claims, err := utils.ValidateToken(h.cfg.SecretKey, state)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to validate user",
		})
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to validate user",
		})
	}

	if err := h.ps.HandleCallback(c.Context(), userID, code); err != nil {
		return c.Status(errorStatus(err)).JSON(fiber.Map{
			"error": "Unable to connect account",
		})
	}

	redirectURL := fmt.Sprintf("%s/dashboard/accounts", h.cfg.FrontendURL)
	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

func (h *PlatformHandler) ListSocialAccounts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	accounts, err := h.ps.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch social accounts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(accounts)
}

func (h *PlatformHandler) DeleteSocialAccount(c *fiber.Ctx) error {
	userID := GetUserID(c)
	accountID := c.QueryInt("id", 0)

	if err := h.ps.Disconnect(c.Context(), userID, int64(accountID)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to disconnect social account",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
