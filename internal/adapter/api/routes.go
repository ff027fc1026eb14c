package api

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/couchcryptid/route-risk-service/internal/adapter/remote"
	"github.com/couchcryptid/route-risk-service/internal/domain"
	"github.com/couchcryptid/route-risk-service/internal/repository"
)

var validate = validator.New()

// RouteDetail is the payload for a single-route view: the assessment plus the
// forecast at the route's start point. The route part is always present; a
// failed forecast is reported in ForecastError instead of failing the request.
type RouteDetail struct {
	domain.RouteAssessment
	Forecast      []domain.DayRisk        `json:"forecast,omitempty"`
	Summary       *domain.ForecastSummary `json:"forecastSummary,omitempty"`
	ForecastError string                  `json:"forecastError,omitempty"`
}

// ForecastResponse is the payload of the forecast endpoint.
type ForecastResponse struct {
	Days    []domain.DayRisk       `json:"days"`
	Summary domain.ForecastSummary `json:"summary"`
}

// FloodRiskResponse is the payload of the flood-risk endpoint.
type FloodRiskResponse struct {
	FloodRisk int             `json:"floodRisk"`
	Risk      domain.RiskTier `json:"risk"`
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, svc RouteService) {
	v1 := app.Group("/api/v1")

	v1.Get("/routes", func(c *fiber.Ctx) error {
		routes := svc.ListRoutes(c.UserContext())
		return c.JSON(domain.AssessAll(routes))
	})

	v1.Get("/routes/:id", func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		id := c.Params("id")

		route, ok := svc.GetRoute(ctx, id)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("route %q not found", id))
		}

		detail := RouteDetail{RouteAssessment: domain.Assess(route)}
		start, _, hasPath := route.Endpoints()
		if !hasPath {
			return c.JSON(detail)
		}

		detail.RouteAssessment = detail.WithFloodRisk(svc.GetFloodRisk(ctx, start.Latitude, start.Longitude))

		forecast, err := svc.GetForecast(ctx, start.Latitude, start.Longitude, repository.DefaultForecastDays)
		if err != nil {
			detail.ForecastError = err.Error()
			return c.JSON(detail)
		}
		summary := domain.SummarizeForecast(forecast)
		detail.Forecast = domain.ClassifyForecast(forecast)
		detail.Summary = &summary
		return c.JSON(detail)
	})

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		q, err := parseCoordQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		snap, err := svc.GetCurrentWeather(c.UserContext(), q.lat, q.lon)
		if err != nil {
			return upstreamError(err)
		}
		return c.JSON(snap)
	})

	v1.Get("/weather/forecast", func(c *fiber.Ctx) error {
		q, err := parseForecastQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		forecast, err := svc.GetForecast(c.UserContext(), q.lat, q.lon, q.Days)
		if err != nil {
			return upstreamError(err)
		}
		return c.JSON(ForecastResponse{
			Days:    domain.ClassifyForecast(forecast),
			Summary: domain.SummarizeForecast(forecast),
		})
	})

	v1.Get("/weather/flood-risk", func(c *fiber.Ctx) error {
		q, err := parseCoordQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		risk := svc.GetFloodRisk(c.UserContext(), q.lat, q.lon)
		return c.JSON(FloodRiskResponse{FloodRisk: risk, Risk: domain.ClassifyFlood(risk)})
	})
}

// upstreamError maps a propagated repository failure to an HTTP error.
func upstreamError(err error) error {
	if errors.Is(err, remote.ErrRemoteDisabled) {
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}
	return fiber.NewError(fiber.StatusBadGateway, err.Error())
}

// coordQuery holds the coordinate query parameters. Values must be numbers;
// their range is not checked.
type coordQuery struct {
	Latitude  string `validate:"required,numeric"`
	Longitude string `validate:"required,numeric"`

	lat, lon float64
}

func parseCoordQuery(c *fiber.Ctx) (coordQuery, error) {
	q := coordQuery{
		Latitude:  c.Query("latitude"),
		Longitude: c.Query("longitude"),
	}
	if err := validate.Struct(q); err != nil {
		return q, err
	}

	var err error
	if q.lat, err = strconv.ParseFloat(q.Latitude, 64); err != nil {
		return q, fmt.Errorf("invalid latitude: %w", err)
	}
	if q.lon, err = strconv.ParseFloat(q.Longitude, 64); err != nil {
		return q, fmt.Errorf("invalid longitude: %w", err)
	}
	return q, nil
}

// forecastQuery adds the optional days parameter (1–16); absent means the default.
type forecastQuery struct {
	coordQuery
	Days int `validate:"omitempty,min=1,max=16"`
}

func parseForecastQuery(c *fiber.Ctx) (forecastQuery, error) {
	coords, err := parseCoordQuery(c)
	if err != nil {
		return forecastQuery{}, err
	}
	q := forecastQuery{coordQuery: coords}

	if s := c.Query("days"); s != "" {
		days, err := strconv.Atoi(s)
		if err != nil {
			return q, errors.New("days must be an integer")
		}
		q.Days = days
	}
	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}
