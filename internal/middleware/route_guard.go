package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/yamenzk/personal-trainer/internal/guard"
)

// RouteGuard only lets wizard requests through while the guard hands the
// device's current location to the wizard.
func RouteGuard() fiber.Handler {
	return func(c *fiber.Ctx) error {
		device, ok := DeviceFrom(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unknown device",
			})
		}

		decision := device.Current()
		switch decision.Kind {
		case guard.KindWizard:
			wizard, ok := device.Wizard()
			if !ok {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error": "Setup is not in progress",
				})
			}
			c.Locals("wizard", wizard)
			return c.Next()
		case guard.KindLoading:
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error":    "Session is loading",
				"decision": decision,
			})
		case guard.KindRedirect, guard.KindLogin:
			if !device.Session.Snapshot().Authenticated {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error":    "Authentication required",
					"decision": decision,
				})
			}
		}
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":    "Setup is already complete",
			"decision": decision,
		})
	}
}
