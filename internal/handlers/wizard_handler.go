package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/yamenzk/personal-trainer/internal/onboarding"
)

type WizardHandler struct{}

func NewWizardHandler() *WizardHandler {
	return &WizardHandler{}
}

func (h *WizardHandler) Current(c *fiber.Ctx) error {
	wizard, err := requireWizard(c)
	if wizard == nil {
		return err
	}
	return c.JSON(fiber.Map{"wizard": wizard.View()})
}

func (h *WizardHandler) Input(c *fiber.Ctx) error {
	wizard, err := requireWizard(c)
	if wizard == nil {
		return err
	}

	// Values arrive as typed text; the step decodes them.
	var req onboarding.Input
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	view, err := wizard.Input(req)
	if err != nil {
		return mapWizardError(c, err, view)
	}
	return c.JSON(fiber.Map{"wizard": view})
}

func (h *WizardHandler) Next(c *fiber.Ctx) error {
	wizard, err := requireWizard(c)
	if wizard == nil {
		return err
	}

	view, err := wizard.Next(c.UserContext())
	if err != nil {
		return mapWizardError(c, err, view)
	}

	response := fiber.Map{"wizard": view}
	if device, ok := deviceOf(c); ok {
		response["location"] = device.History.Location()
		response["notices"] = device.DrainNotices()
	}
	return c.JSON(response)
}

func (h *WizardHandler) Back(c *fiber.Ctx) error {
	wizard, err := requireWizard(c)
	if wizard == nil {
		return err
	}

	view, err := wizard.Back()
	if err != nil {
		return mapWizardError(c, err, view)
	}
	return c.JSON(fiber.Map{"wizard": view})
}

func requireWizard(c *fiber.Ctx) (*onboarding.Wizard, error) {
	wizard, ok := c.Locals("wizard").(*onboarding.Wizard)
	if !ok || wizard == nil {
		return nil, c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Setup is not in progress"})
	}
	return wizard, nil
}

func mapWizardError(c *fiber.Ctx, err error, view onboarding.View) error {
	var notices any
	if device, ok := deviceOf(c); ok {
		notices = device.DrainNotices()
	}

	if verr, ok := onboarding.IsValidationError(err); ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   verr.Message,
			"field":   verr.Field,
			"wizard":  view,
			"notices": notices,
		})
	}

	switch {
	case errors.Is(err, onboarding.ErrPersistFailed):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "Failed to update data. Please try again.",
			"wizard":  view,
			"notices": notices,
		})
	case errors.Is(err, onboarding.ErrSubmitting):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A step is already being saved", "wizard": view})
	case errors.Is(err, onboarding.ErrWizardNotActive):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Setup is not in progress", "wizard": view})
	case errors.Is(err, onboarding.ErrNoPreviousStep):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Already on the first step", "wizard": view})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process setup step"})
	}
}
