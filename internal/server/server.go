// Package server assembles the Fiber application: middleware, health and
// metrics endpoints, and the API routes.
package server

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"storeapi/internal/handlers"
	"storeapi/internal/metrics"
	"storeapi/internal/middleware"
	"storeapi/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BodyLimit caps accepted request bodies.
const BodyLimit = 50 * 1024 * 1024

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Users    *services.UserService
	Products *services.ProductService
	Tokens   *services.TokenService
	Metrics  *metrics.Metrics
	Log      *zap.Logger
	// Ping checks the store for /health. Nil means always healthy.
	Ping func(ctx context.Context) error
	// AccessLog receives one line per request; nil means stdout.
	AccessLog          io.Writer
	HideInternalErrors bool
}

// New builds the Fiber app with all routes registered.
func New(d Deps) *fiber.App {
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.AccessLog == nil {
		d.AccessLog = os.Stdout
	}

	app := fiber.New(fiber.Config{
		AppName:      "storeapi",
		BodyLimit:    BodyLimit,
		ErrorHandler: errorHandler,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		Output: d.AccessLog,
	}))
	app.Use(d.Metrics.Middleware())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "working"})
	})
	app.Get("/health", healthHandler(d.Ping))
	app.Get("/metrics", d.Metrics.Handler())

	// --- API Routes ---
	resp := handlers.Responder{HideInternalErrors: d.HideInternalErrors, Log: d.Log}
	api := app.Group("/api")
	handlers.NewUserHandler(d.Users, resp).RegisterRoutes(api)
	handlers.NewProductHandler(d.Products, resp).RegisterRoutes(api, middleware.AuthRequired(d.Tokens, d.Log))

	return app
}

func healthHandler(ping func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now().Format(time.RFC3339)
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"status": "unhealthy",
					"time":   now,
					"error":  err.Error(),
				})
			}
		}
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   now,
		})
	}
}

// errorHandler renders errors that escape handlers (unknown routes, body
// limit, recovered panics) in the API envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
