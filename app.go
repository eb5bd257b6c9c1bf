package main

import (
	"context"
	"time"

	"usermgmt/internal/handlers"
	"usermgmt/internal/metrics"
	"usermgmt/internal/middleware"
	"usermgmt/internal/repositories"
	"usermgmt/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
)

const healthCheckTimeout = 2 * time.Second

// Dependencies are the collaborators NewApp wires together.
type Dependencies struct {
	Repo       repositories.UserRepository
	Config     services.ConfigSource
	Events     services.EventPublisher // nil disables events
	Log        *logrus.Logger
	BcryptCost int
}

// NewApp builds the Fiber application with every route registered.
func NewApp(deps Dependencies) (*fiber.App, *services.TokenService) {
	tokenService := services.NewTokenService(deps.Config)
	hasher := services.NewBcryptHasher(deps.BcryptCost)
	userService := services.NewUserService(deps.Repo, hasher, tokenService, deps.Events, deps.Log)
	m := metrics.New()
	userHandler := handlers.NewUserHandler(userService, m)

	app := fiber.New(fiber.Config{
		AppName:      "User Management API",
		ErrorHandler: handlers.NewErrorHandler(deps.Log),
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		Output: deps.Log.Out,
	}))
	app.Use(m.Middleware())

	// --- Routes ---
	api := app.Group("/api")
	userHandler.RegisterRoutes(api, middleware.AuthRequired(tokenService, deps.Log))

	app.Get("/metrics", m.Handler())
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
		defer cancel()
		if err := deps.Repo.Ping(ctx); err != nil {
			deps.Log.WithError(err).Warn("Health check failed")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		}
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return app, tokenService
}
