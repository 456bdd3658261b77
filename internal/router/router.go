package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/spcgrid/spcgrid/internal/cache"
	"github.com/spcgrid/spcgrid/internal/config"
	"github.com/spcgrid/spcgrid/internal/handlers"
	"github.com/spcgrid/spcgrid/internal/logging"
	"github.com/spcgrid/spcgrid/internal/middleware"
	"github.com/spcgrid/spcgrid/internal/queue"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, resultCache cache.ResultCache,
	notifier *queue.Notifier, cfg config.Config,
) *handlers.Handler {
	h := handlers.New(logger, resultCache, notifier, cfg.Engine)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger))

	// Health check (no auth required)
	app.Get("/health", h.Health)

	// API key authentication middleware
	authMiddleware := middleware.APIKeyAuth(logger, cfg.Auth.APIKeys, cfg.Auth.Enabled)

	// API v1 routes (protected by API key)
	v1 := app.Group("/v1", authMiddleware)

	// Chart type and rule discovery. The types route registers before the
	// computation route so "types" never binds as a :type parameter.
	v1.Get("/charts/types", h.ListChartTypes)
	v1.Get("/rules", h.ListRules)

	// Chart computation
	v1.Post("/charts/:type", h.ComputeChart)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, resultCache cache.ResultCache,
	notifier *queue.Notifier, cfg config.Config,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "spcgrid",
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, resultCache, notifier, cfg)

	return app
}
