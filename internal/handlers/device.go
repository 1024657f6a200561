package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/yamenzk/personal-trainer/internal/middleware"
	"github.com/yamenzk/personal-trainer/internal/services"
)

func deviceOf(c *fiber.Ctx) (*services.Device, bool) {
	return middleware.DeviceFrom(c)
}

func requireDevice(c *fiber.Ctx) (*services.Device, error) {
	device, ok := middleware.DeviceFrom(c)
	if !ok {
		return nil, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unknown device"})
	}
	return device, nil
}
