package domain

import "context"

// RemoteSource fetches routes and weather from the remote route service.
type RemoteSource interface {
	// ListRoutes returns every route in server order.
	ListRoutes(ctx context.Context) ([]Route, error)

	// GetRoute returns a single route by id.
	GetRoute(ctx context.Context, id string) (Route, error)

	// CurrentWeather returns current conditions at a coordinate.
	CurrentWeather(ctx context.Context, lat, lon float64) (WeatherSnapshot, error)

	// Forecast returns up to days forecast days for a coordinate.
	Forecast(ctx context.Context, lat, lon float64, days int) (Forecast, error)

	// FloodRisk returns the 0–10 flood-risk score for a coordinate.
	FloodRisk(ctx context.Context, lat, lon float64) (int, error)
}
