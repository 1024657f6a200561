package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

type preferenceService interface {
	Theme(ctx context.Context, deviceID string) (string, error)
	ToggleTheme(ctx context.Context, deviceID string) (string, error)
	LastLoginID(ctx context.Context, deviceID string) (string, error)
}

type PreferenceHandler struct {
	service preferenceService
}

func NewPreferenceHandler(service preferenceService) *PreferenceHandler {
	return &PreferenceHandler{service: service}
}

func (h *PreferenceHandler) GetTheme(c *fiber.Ctx) error {
	deviceID, ok := c.Locals("device_id").(string)
	if !ok || deviceID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unknown device"})
	}

	theme, err := h.service.Theme(c.UserContext(), deviceID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load theme"})
	}
	return c.JSON(fiber.Map{"theme": theme})
}

func (h *PreferenceHandler) ToggleTheme(c *fiber.Ctx) error {
	deviceID, ok := c.Locals("device_id").(string)
	if !ok || deviceID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unknown device"})
	}

	theme, err := h.service.ToggleTheme(c.UserContext(), deviceID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update theme"})
	}
	return c.JSON(fiber.Map{"theme": theme})
}

func (h *PreferenceHandler) GetLastLogin(c *fiber.Ctx) error {
	deviceID, ok := c.Locals("device_id").(string)
	if !ok || deviceID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unknown device"})
	}

	membershipID, err := h.service.LastLoginID(c.UserContext(), deviceID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load last login"})
	}
	return c.JSON(fiber.Map{"membership_id": membershipID})
}
