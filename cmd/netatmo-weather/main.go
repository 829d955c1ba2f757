package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	httpapi "github.com/kdubois/netatmo-weather/internal/api/http"
	"github.com/kdubois/netatmo-weather/internal/auth"
	"github.com/kdubois/netatmo-weather/internal/config"
	"github.com/kdubois/netatmo-weather/internal/netatmo"
	"github.com/kdubois/netatmo-weather/internal/scheduler"
	"github.com/kdubois/netatmo-weather/internal/weather"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zlog.Sync()

	// Shared HTTP client for outbound calls, token refresh included.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// OAuth2 refresh-token lifecycle.
	tokens := auth.NewTokenManager(httpClient, cfg.NetatmoBaseURL,
		cfg.NetatmoClientID, cfg.NetatmoClientSecret, cfg.NetatmoRefreshToken, zlog)

	// Upstream client with circuit breaker and rate limiting.
	client := netatmo.NewClient(httpClient, cfg.NetatmoBaseURL, tokens, zlog)

	// Cached repository and the core service on top of it.
	repo := weather.NewRepository(client, cfg.CacheTTL, zlog)
	service := weather.NewService(client, repo, zlog)

	// Optional cache-warming job.
	sched := scheduler.New(cfg.RefreshInterval, service, zlog)
	if err := sched.Start(); err != nil {
		zlog.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "netatmo-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "netatmo-weather",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
}
