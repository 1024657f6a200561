package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/yamenzk/personal-trainer/internal/config"
	"github.com/yamenzk/personal-trainer/internal/database"
	"github.com/yamenzk/personal-trainer/internal/logging"
	"github.com/yamenzk/personal-trainer/internal/onboarding"
	"github.com/yamenzk/personal-trainer/internal/repository"
	"github.com/yamenzk/personal-trainer/internal/routes"
	"github.com/yamenzk/personal-trainer/internal/services"
	eventws "github.com/yamenzk/personal-trainer/internal/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()
	if !cfg.DotenvLoaded {
		zlog.Info("no .env file found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Database
	pool, err := database.ConnectDB(ctx, cfg.DBUrl, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	// 3. Wire the device layer
	hub := eventws.NewHub(zlog.Named("events"))
	preferenceRepo := repository.NewPreferenceRepository(pool)
	coachAPI := services.NewFrappeClient(cfg.CoachAPIURL, cfg.CoachAPIKey, cfg.CoachAPISecret, cfg.CoachAPITimeout)
	devices := services.NewDeviceRegistry(services.DeviceDeps{
		API:             coachAPI,
		Preferences:     preferenceRepo,
		Publisher:       hub,
		Steps:           onboarding.DefaultRegistry(time.Now),
		RefreshInterval: cfg.SessionRefreshInterval,
		Logger:          zlog.Named("device"),
	}, cfg.DeviceIdleTTL)

	// 4. Setup Fiber
	app := fiber.New(fiber.Config{DisableStartupMessage: !cfg.IsDevelopment()})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: cfg.AllowedOrigins != "*",
	}))
	app.Use(logger.New())
	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.IsDevelopment()}))

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"devices": devices.Len(),
		})
	})
	if err := routes.RegisterRoutes(app, cfg, routes.Dependencies{
		Devices:     devices,
		Preferences: services.NewPreferenceService(preferenceRepo),
		Hub:         hub,
	}); err != nil {
		zlog.Fatal("failed to register routes", zap.Error(err))
	}

	// 5. Run server, event hub and device sweeper until a signal arrives
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return hub.Run(groupCtx)
	})
	group.Go(func() error {
		return devices.Run(groupCtx)
	})
	group.Go(func() error {
		zlog.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		return app.Listen(":" + cfg.Port)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		zlog.Fatal("server stopped with error", zap.Error(err))
	}
	zlog.Info("server stopped")
}
