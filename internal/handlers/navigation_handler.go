package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/yamenzk/personal-trainer/internal/guard"
	"github.com/yamenzk/personal-trainer/internal/models"
)

type NavigationHandler struct{}

func NewNavigationHandler() *NavigationHandler {
	return &NavigationHandler{}
}

// Navigate records where the device is and answers with what it should see
// there.
func (h *NavigationHandler) Navigate(c *fiber.Ctx) error {
	device, err := requireDevice(c)
	if device == nil {
		return err
	}

	path := c.Query("path")
	if path == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "path is required"})
	}

	location := models.Location{Path: path}
	if from := c.Query("from"); from != "" {
		location.From = &models.Location{Path: guard.Normalize(from)}
	}

	decision := device.Visit(location)
	response := fiber.Map{
		"decision": decision,
		"location": device.History.Location(),
		"notices":  device.DrainNotices(),
	}
	if decision.Kind == guard.KindWizard {
		if wizard, ok := device.Wizard(); ok {
			response["wizard"] = wizard.View()
		}
	}
	return c.JSON(response)
}
