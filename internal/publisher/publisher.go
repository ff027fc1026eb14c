// Package publisher periodically assesses every known route and publishes the
// assessments to a downstream sink.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/couchcryptid/route-risk-service/internal/domain"
	"github.com/couchcryptid/route-risk-service/internal/observability"
)

// RouteReader is the slice of the repository the publisher needs.
type RouteReader interface {
	ListRoutes(ctx context.Context) []domain.Route
	GetFloodRisk(ctx context.Context, lat, lon float64) int
}

// BatchLoader writes a batch of assessments to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, assessments []domain.RouteAssessment) error
}

// runTimeout bounds a single scheduled run.
const runTimeout = 2 * time.Minute

// Publisher assesses routes and hands them to a BatchLoader.
type Publisher struct {
	routes    RouteReader
	loader    BatchLoader
	logger    *slog.Logger
	metrics   *observability.Metrics
	interval  time.Duration
	scheduler *gocron.Scheduler
	ready     atomic.Bool
}

// New creates a Publisher that runs every interval once started.
func New(routes RouteReader, loader BatchLoader, interval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	return &Publisher{
		routes:    routes,
		loader:    loader,
		logger:    logger,
		metrics:   metrics,
		interval:  interval,
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

// CheckReadiness returns nil once at least one batch has been published.
func (p *Publisher) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("publisher has not published any assessments yet")
	}
	return nil
}

// Assess lists routes and classifies each one, attaching the flood risk at its
// start point. Routes without coordinates carry no flood reading.
func (p *Publisher) Assess(ctx context.Context) []domain.RouteAssessment {
	routes := p.routes.ListRoutes(ctx)
	out := make([]domain.RouteAssessment, 0, len(routes))
	for _, r := range routes {
		a := domain.Assess(r)
		if start, _, ok := r.Endpoints(); ok {
			a = a.WithFloodRisk(p.routes.GetFloodRisk(ctx, start.Latitude, start.Longitude))
		}
		out = append(out, a)
	}
	return out
}

// RunOnce assesses all routes and publishes them as one batch. It returns the
// number of assessments published.
func (p *Publisher) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()
	assessments := p.Assess(ctx)

	if err := p.loader.LoadBatch(ctx, assessments); err != nil {
		p.metrics.PublishErrors.Inc()
		return 0, fmt.Errorf("publish %d assessments: %w", len(assessments), err)
	}

	p.metrics.AssessmentsPublished.Add(float64(len(assessments)))
	p.metrics.PublishDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	p.logger.Info("assessments published", "count", len(assessments), "duration_ms", time.Since(start).Milliseconds())
	return len(assessments), nil
}

// Start schedules RunOnce every interval, beginning immediately. Overlapping
// runs are skipped.
func (p *Publisher) Start() error {
	if p.interval <= 0 {
		return fmt.Errorf("publish interval must be positive, got %s", p.interval)
	}

	_, err := p.scheduler.Every(p.interval).SingletonMode().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		if _, err := p.RunOnce(ctx); err != nil {
			p.logger.Error("scheduled publish failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule publisher: %w", err)
	}

	p.scheduler.StartAsync()
	p.logger.Info("publisher started", "interval", p.interval)
	return nil
}

// Stop cancels future runs.
func (p *Publisher) Stop() {
	if p.scheduler != nil {
		p.scheduler.Stop()
	}
}
