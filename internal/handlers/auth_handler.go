package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/yamenzk/personal-trainer/internal/services"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

type loginRequest struct {
	MembershipID string `json:"membership_id"`
}

func (h *AuthHandler) Session(c *fiber.Ctx) error {
	device, err := requireDevice(c)
	if device == nil {
		return err
	}

	return c.JSON(fiber.Map{
		"session":     device.Session.Snapshot(),
		"needs_setup": device.NeedsSetup(),
		"location":    device.History.Location(),
		"notices":     device.DrainNotices(),
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	device, err := requireDevice(c)
	if device == nil {
		return err
	}

	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if !device.Session.Login(c.UserContext(), req.MembershipID) {
		return mapAuthError(c, req.MembershipID, device)
	}

	return c.JSON(fiber.Map{
		"session":     device.Session.Snapshot(),
		"needs_setup": device.NeedsSetup(),
		"location":    device.History.Location(),
		"notices":     device.DrainNotices(),
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	device, err := requireDevice(c)
	if device == nil {
		return err
	}

	device.Session.Logout(c.UserContext())
	return c.JSON(fiber.Map{
		"session":  device.Session.Snapshot(),
		"location": device.History.Location(),
		"notices":  device.DrainNotices(),
	})
}

// Check re-validates the stored token. It does not redirect; the response
// carries the resulting location instead.
func (h *AuthHandler) Check(c *fiber.Ctx) error {
	device, err := requireDevice(c)
	if device == nil {
		return err
	}

	authenticated := device.Session.CheckAuth(c.UserContext(), true)
	return c.JSON(fiber.Map{
		"authenticated": authenticated,
		"session":       device.Session.Snapshot(),
		"needs_setup":   device.NeedsSetup(),
		"location":      device.History.Location(),
		"notices":       device.DrainNotices(),
	})
}

func mapAuthError(c *fiber.Ctx, membershipID string, device *services.Device) error {
	state := device.Session.Snapshot()
	notices := device.DrainNotices()

	switch {
	case strings.TrimSpace(membershipID) == "":
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   services.EmptyMembershipIDMessage,
			"notices": notices,
		})
	case state.Error == services.InvalidMembershipIDMessage:
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   state.Error,
			"notices": notices,
		})
	default:
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   state.Error,
			"notices": notices,
		})
	}
}
