// Package api serves classified routes and forecasts to map and detail views.
// Views never compute tiers themselves; every riskLevel and floodRisk leaves
// this package already classified.
package api

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/couchcryptid/route-risk-service/internal/domain"
)

// RouteService is the data-access layer the API reads from.
type RouteService interface {
	ListRoutes(ctx context.Context) []domain.Route
	GetRoute(ctx context.Context, id string) (domain.Route, bool)
	GetCurrentWeather(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error)
	GetForecast(ctx context.Context, lat, lon float64, days int) (domain.Forecast, error)
	GetFloodRisk(ctx context.Context, lat, lon float64) int
}

// NewApp builds the Fiber app with error handling, request logging, and routes.
func NewApp(svc RouteService, logger *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "route-risk-api",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          15 * time.Second,
		ErrorHandler:          errorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(requestLogger(logger))

	RegisterRoutes(app, svc)
	return app
}

func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error("api request failed", "method", c.Method(), "path", c.Path(), "status", code, "error", err)
		}
		return c.Status(code).JSON(fiber.Map{
			"error":   true,
			"message": err.Error(),
		})
	}
}

func requestLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		logger.Debug("api request",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return err
	}
}
