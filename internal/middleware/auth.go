package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/yamenzk/personal-trainer/internal/services"
	"github.com/yamenzk/personal-trainer/pkg/utils"
)

const DeviceCookie = "device"

type deviceProvider interface {
	Get(ctx context.Context, id string) *services.Device
}

// DeviceRequired identifies the browser by its signed device cookie, issuing
// a fresh one when it is missing or invalid, and loads the device session.
func DeviceRequired(secret string, devices deviceProvider, secureCookie bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deviceID := ""
		if cookie := c.Cookies(DeviceCookie); cookie != "" {
			if claims, err := utils.ValidateToken(cookie, secret); err == nil {
				deviceID = claims.DeviceID
			}
		}

		if deviceID == "" {
			deviceID = uuid.NewString()
			token, err := utils.GenerateToken(deviceID, secret)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "Failed to issue device token",
				})
			}
			c.Cookie(&fiber.Cookie{
				Name:     DeviceCookie,
				Value:    token,
				Path:     "/",
				Expires:  time.Now().Add(utils.DeviceTokenTTL),
				HTTPOnly: true,
				Secure:   secureCookie,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}

		c.Locals("device_id", deviceID)
		c.Locals("device", devices.Get(c.UserContext(), deviceID))

		return c.Next()
	}
}

// DeviceFrom returns the device loaded by DeviceRequired.
func DeviceFrom(c *fiber.Ctx) (*services.Device, bool) {
	device, ok := c.Locals("device").(*services.Device)
	return device, ok && device != nil
}
