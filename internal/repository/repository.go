// Package repository serves routes and weather from the remote route service,
// degrading to the fallback catalog according to a fixed per-operation policy.
package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/route-risk-service/internal/adapter/remote"
	"github.com/couchcryptid/route-risk-service/internal/domain"
	"github.com/couchcryptid/route-risk-service/internal/fallback"
	"github.com/couchcryptid/route-risk-service/internal/observability"
)

// DefaultForecastDays is used when a caller asks for zero or fewer days.
const DefaultForecastDays = 5

// DefaultFloodRisk is served when the flood-risk lookup fails: a moderate
// placeholder rather than either extreme. Kept because clients observe it;
// whether "assume moderate" is the right product behavior is still open.
const DefaultFloodRisk = 5

// policies is the failure policy of every repository operation.
var policies = map[string]Policy{
	remote.OpListRoutes:     OpenToFallback,
	remote.OpGetRoute:       OpenToFallback,
	remote.OpCurrentWeather: ClosedPropagate,
	remote.OpForecast:       ClosedPropagate,
	remote.OpFloodRisk:      DefaultValue(DefaultFloodRisk),
}

// PolicyFor returns the failure policy of a repository operation.
func PolicyFor(op string) Policy {
	return policies[op]
}

// Options configures a Repository.
type Options struct {
	// UseFallbackOnly skips the remote service entirely.
	UseFallbackOnly bool
}

// Repository is the data-access layer consumed by the API, CLI, and publisher.
// It holds no per-request state and never retries.
type Repository struct {
	remote       domain.RemoteSource
	dataset      *fallback.Dataset
	fallbackOnly bool
	metrics      *observability.Metrics
	logger       *slog.Logger
}

// New creates a Repository. src may be nil when opts.UseFallbackOnly is set.
func New(src domain.RemoteSource, dataset *fallback.Dataset, opts Options, metrics *observability.Metrics, logger *slog.Logger) *Repository {
	fallbackOnly := opts.UseFallbackOnly || src == nil
	if fallbackOnly {
		metrics.FallbackOnly.Set(1)
	} else {
		metrics.FallbackOnly.Set(0)
	}
	return &Repository{
		remote:       src,
		dataset:      dataset,
		fallbackOnly: fallbackOnly,
		metrics:      metrics,
		logger:       logger,
	}
}

// FallbackOnly reports whether remote calls are disabled.
func (r *Repository) FallbackOnly() bool { return r.fallbackOnly }

// CheckReadiness reports whether route reads can be answered.
func (r *Repository) CheckReadiness(_ context.Context) error {
	if r.dataset == nil || r.dataset.Len() == 0 {
		return errors.New("fallback catalog is empty")
	}
	return nil
}

// ListRoutes returns every route in server order, or the full fallback
// catalog when the remote read fails. It never fails.
func (r *Repository) ListRoutes(ctx context.Context) []domain.Route {
	routes, _ := fetch(ctx, r, operation[[]domain.Route]{
		name:     remote.OpListRoutes,
		remote:   func(ctx context.Context) ([]domain.Route, error) { return r.remote.ListRoutes(ctx) },
		fallback: r.dataset.Routes,
	})
	return routes
}

// GetRoute returns the route with the given id. On remote failure it scans the
// fallback catalog; ok is false when no fallback route matches.
func (r *Repository) GetRoute(ctx context.Context, id string) (route domain.Route, ok bool) {
	found, _ := fetch(ctx, r, operation[*domain.Route]{
		name:  remote.OpGetRoute,
		attrs: []any{"route_id", id},
		remote: func(ctx context.Context) (*domain.Route, error) {
			rt, err := r.remote.GetRoute(ctx, id)
			if err != nil {
				return nil, err
			}
			return &rt, nil
		},
		fallback: func() *domain.Route {
			if rt, ok := r.dataset.Route(id); ok {
				return &rt
			}
			return nil
		},
	})
	if found == nil {
		return domain.Route{}, false
	}
	return *found, true
}

// GetCurrentWeather returns current conditions at a coordinate. Failures are
// returned to the caller; there is no fallback.
func (r *Repository) GetCurrentWeather(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error) {
	return fetch(ctx, r, operation[domain.WeatherSnapshot]{
		name:  remote.OpCurrentWeather,
		attrs: []any{"lat", lat, "lon", lon},
		remote: func(ctx context.Context) (domain.WeatherSnapshot, error) {
			return r.remote.CurrentWeather(ctx, lat, lon)
		},
	})
}

// GetForecast returns up to days forecast days (DefaultForecastDays when
// days <= 0). Remote failures are returned to the caller. In fallback-only
// mode the catalog forecast is served.
func (r *Repository) GetForecast(ctx context.Context, lat, lon float64, days int) (domain.Forecast, error) {
	if days <= 0 {
		days = DefaultForecastDays
	}
	return fetch(ctx, r, operation[domain.Forecast]{
		name:  remote.OpForecast,
		attrs: []any{"lat", lat, "lon", lon, "days", days},
		remote: func(ctx context.Context) (domain.Forecast, error) {
			return r.remote.Forecast(ctx, lat, lon, days)
		},
		offline: func() domain.Forecast { return r.dataset.Forecast(days) },
	})
}

// GetFloodRisk returns the 0–10 flood-risk score at a coordinate, or
// DefaultFloodRisk when the lookup fails. It never fails.
func (r *Repository) GetFloodRisk(ctx context.Context, lat, lon float64) int {
	risk, _ := fetch(ctx, r, operation[int]{
		name:     remote.OpFloodRisk,
		attrs:    []any{"lat", lat, "lon", lon},
		remote:   func(ctx context.Context) (int, error) { return r.remote.FloodRisk(ctx, lat, lon) },
		fallback: func() int { return PolicyFor(remote.OpFloodRisk).Value() },
	})
	return risk
}

// operation describes one repository read.
type operation[T any] struct {
	name  string
	attrs []any // log context: route id or coordinates

	remote func(context.Context) (T, error)

	// fallback supplies the substitute for OpenToFallback and DefaultValue policies.
	fallback func() T

	// offline, when set, serves fallback-only mode instead of the policy.
	offline func() T
}

// fetch makes at most one remote attempt and applies the operation's policy
// to any failure.
func fetch[T any](ctx context.Context, r *Repository, op operation[T]) (T, error) {
	policy := PolicyFor(op.name)

	var err error
	if r.fallbackOnly {
		if op.offline != nil {
			return op.offline(), nil
		}
		err = remote.ErrRemoteDisabled
	} else {
		var v T
		v, err = op.remote(ctx)
		if err == nil {
			return v, nil
		}
	}

	r.metrics.PolicyApplied.WithLabelValues(op.name, policy.label()).Inc()

	level := slog.LevelWarn
	msg := "remote read failed"
	if errors.Is(err, remote.ErrRemoteDisabled) {
		level = slog.LevelDebug
		msg = "remote disabled"
	}
	args := append([]any{"op", op.name, "policy", policy.String(), "outcome", remote.Outcome(err), "error", err}, op.attrs...)
	r.logger.Log(ctx, level, msg, args...)

	var zero T
	if policy.Propagates() || op.fallback == nil {
		return zero, err
	}
	return op.fallback(), nil
}
