package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/yamenzk/personal-trainer/internal/config"
	"github.com/yamenzk/personal-trainer/internal/handlers"
	"github.com/yamenzk/personal-trainer/internal/middleware"
	"github.com/yamenzk/personal-trainer/internal/services"
	eventws "github.com/yamenzk/personal-trainer/internal/websocket"
)

type Dependencies struct {
	Devices     *services.DeviceRegistry
	Preferences *services.PreferenceService
	Hub         *eventws.Hub
}

func RegisterRoutes(app *fiber.App, cfg *config.Config, deps Dependencies) error {
	authHandler := handlers.NewAuthHandler()
	navigationHandler := handlers.NewNavigationHandler()
	wizardHandler := handlers.NewWizardHandler()
	preferenceHandler := handlers.NewPreferenceHandler(deps.Preferences)
	eventsHandler := handlers.NewEventsHandler(deps.Hub)

	if err := registerDocsRoutes(app, cfg); err != nil {
		return err
	}

	api := app.Group("/api", middleware.DeviceRequired(cfg.DeviceSecret, deps.Devices, cfg.SecureCookie))

	api.Get("/session", authHandler.Session)
	api.Get("/navigate", navigationHandler.Navigate)

	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", authHandler.Logout)
	auth.Post("/check", authHandler.Check)

	wizard := api.Group("/wizard", middleware.RouteGuard())
	wizard.Get("", wizardHandler.Current)
	wizard.Put("/input", wizardHandler.Input)
	wizard.Post("/next", wizardHandler.Next)
	wizard.Post("/back", wizardHandler.Back)

	preferences := api.Group("/preferences")
	preferences.Get("/theme", preferenceHandler.GetTheme)
	preferences.Post("/theme/toggle", preferenceHandler.ToggleTheme)
	preferences.Get("/last-login", preferenceHandler.GetLastLogin)

	api.Use("/ws", eventsHandler.WebSocketAuth)
	api.Get("/ws", websocket.New(eventsHandler.HandleWebSocket))

	return nil
}
