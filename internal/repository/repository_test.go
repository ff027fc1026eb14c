package repository

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/route-risk-service/internal/adapter/remote"
	"github.com/couchcryptid/route-risk-service/internal/domain"
	"github.com/couchcryptid/route-risk-service/internal/fallback"
	"github.com/couchcryptid/route-risk-service/internal/observability"
)

// --- fake remote source ---

type fakeSource struct {
	calls    atomic.Int32
	err      error
	routes   []domain.Route
	weather  domain.WeatherSnapshot
	forecast domain.Forecast
	flood    int
	lastDays atomic.Int32
}

func (f *fakeSource) ListRoutes(_ context.Context) ([]domain.Route, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.routes, nil
}

func (f *fakeSource) GetRoute(_ context.Context, id string) (domain.Route, error) {
	f.calls.Add(1)
	if f.err != nil {
		return domain.Route{}, f.err
	}
	for _, r := range f.routes {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Route{}, &remote.ServerError{Op: remote.OpGetRoute, StatusCode: http.StatusNotFound}
}

func (f *fakeSource) CurrentWeather(_ context.Context, _, _ float64) (domain.WeatherSnapshot, error) {
	f.calls.Add(1)
	return f.weather, f.err
}

func (f *fakeSource) Forecast(_ context.Context, _, _ float64, days int) (domain.Forecast, error) {
	f.calls.Add(1)
	f.lastDays.Store(int32(days))
	if f.err != nil {
		return nil, f.err
	}
	return f.forecast, nil
}

func (f *fakeSource) FloodRisk(_ context.Context, _, _ float64) (int, error) {
	f.calls.Add(1)
	return f.flood, f.err
}

func failingSource() *fakeSource {
	return &fakeSource{err: &remote.TransportError{Op: "test", Err: errors.New("connection refused")}}
}

func newTestRepo(src domain.RemoteSource, opts Options) (*Repository, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	return New(src, fallback.Builtin(), opts, metrics, observability.DiscardLogger()), metrics
}

// --- route reads: fail open to the fallback catalog ---

func TestListRoutes_FailingRemoteServesFallback(t *testing.T) {
	src := failingSource()
	repo, metrics := newTestRepo(src, Options{})

	routes := repo.ListRoutes(context.Background())

	require.Len(t, routes, 3)
	assert.Equal(t, []string{"route1", "route2", "route3"}, ids(routes))
	assert.Equal(t, int32(1), src.calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PolicyApplied.WithLabelValues(remote.OpListRoutes, "fallback")))
}

func TestListRoutes_RemoteOrderPreserved(t *testing.T) {
	src := &fakeSource{routes: []domain.Route{{ID: "z", RiskLevel: 1}, {ID: "a", RiskLevel: 9}}}
	repo, _ := newTestRepo(src, Options{})

	routes := repo.ListRoutes(context.Background())
	assert.Equal(t, []string{"z", "a"}, ids(routes))
}

func TestGetRoute_FailingRemote(t *testing.T) {
	repo, _ := newTestRepo(failingSource(), Options{})

	route, ok := repo.GetRoute(context.Background(), "route3")
	require.True(t, ok)
	assert.Equal(t, "South Seattle to Bellevue", route.Name)
	assert.Equal(t, 8, route.RiskLevel)
	assert.Equal(t, domain.TierHigh, domain.Classify(route.RiskLevel).Tier)

	_, ok = repo.GetRoute(context.Background(), "nonexistent")
	assert.False(t, ok)
}

func TestGetRoute_RemoteNotFoundFallsBack(t *testing.T) {
	src := &fakeSource{routes: []domain.Route{{ID: "remote-only"}}}
	repo, _ := newTestRepo(src, Options{})

	route, ok := repo.GetRoute(context.Background(), "route2")
	require.True(t, ok, "404 follows the fallback policy")
	assert.Equal(t, "Ballard to Fremont", route.Name)

	route, ok = repo.GetRoute(context.Background(), "remote-only")
	require.True(t, ok)
	assert.Equal(t, "remote-only", route.ID)
}

func TestListRoutes_SnapshotsDoNotAliasCatalog(t *testing.T) {
	repo, _ := newTestRepo(failingSource(), Options{})

	first := repo.ListRoutes(context.Background())
	first[0].RiskLevel = 10
	first[0].Coordinates[0].Latitude = 0

	second := repo.ListRoutes(context.Background())
	assert.Equal(t, 2, second[0].RiskLevel)
	assert.Equal(t, 47.6062, second[0].Coordinates[0].Latitude)
}

// --- weather reads: fail closed ---

func TestWeather_FailuresPropagate(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target any
	}{
		{"transport", &remote.TransportError{Op: "x", Err: context.DeadlineExceeded}, new(*remote.TransportError)},
		{"server", &remote.ServerError{Op: "x", StatusCode: 502}, new(*remote.ServerError)},
		{"decode", &remote.DecodeError{Op: "x", Err: errors.New("unexpected EOF")}, new(*remote.DecodeError)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, metrics := newTestRepo(&fakeSource{err: tt.err}, Options{})

			_, err := repo.GetCurrentWeather(context.Background(), 47.6, -122.3)
			require.Error(t, err)
			assert.ErrorAs(t, err, tt.target)

			forecast, err := repo.GetForecast(context.Background(), 47.6, -122.3, 5)
			require.Error(t, err)
			assert.ErrorAs(t, err, tt.target)
			assert.Nil(t, forecast, "no fallback forecast is substituted")

			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PolicyApplied.WithLabelValues(remote.OpForecast, "propagate")))
		})
	}
}

func TestGetForecast_Success(t *testing.T) {
	src := &fakeSource{forecast: domain.Forecast{{Date: "2025-05-01", FloodRisk: 4}, {Date: "2025-05-02", FloodRisk: 1}}}
	repo, _ := newTestRepo(src, Options{})

	f, err := repo.GetForecast(context.Background(), 1, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, "2025-05-01", f[0].Date)
	assert.Equal(t, int32(2), src.lastDays.Load())
}

func TestGetForecast_DefaultDays(t *testing.T) {
	src := &fakeSource{}
	repo, _ := newTestRepo(src, Options{})

	_, err := repo.GetForecast(context.Background(), 1, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(DefaultForecastDays), src.lastDays.Load())
}

func TestGetCurrentWeather_Success(t *testing.T) {
	src := &fakeSource{weather: domain.WeatherSnapshot{Conditions: "Heavy Rain", FloodRiskLevel: 7}}
	repo, _ := newTestRepo(src, Options{})

	snap, err := repo.GetCurrentWeather(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "Heavy Rain", snap.Conditions)
}

// --- flood risk: fail to a fixed default ---

func TestGetFloodRisk_FailingRemoteReturnsDefault(t *testing.T) {
	repo, metrics := newTestRepo(failingSource(), Options{})

	assert.Equal(t, 5, repo.GetFloodRisk(context.Background(), 47.6, -122.3))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PolicyApplied.WithLabelValues(remote.OpFloodRisk, "default")))
}

func TestGetFloodRisk_Success(t *testing.T) {
	for _, v := range []int{0, 5, 9} {
		repo, _ := newTestRepo(&fakeSource{flood: v}, Options{})
		assert.Equal(t, v, repo.GetFloodRisk(context.Background(), 1, 2))
	}
}

func TestPolicyFor(t *testing.T) {
	assert.Equal(t, OpenToFallback, PolicyFor(remote.OpListRoutes))
	assert.Equal(t, OpenToFallback, PolicyFor(remote.OpGetRoute))
	assert.Equal(t, ClosedPropagate, PolicyFor(remote.OpCurrentWeather))
	assert.Equal(t, ClosedPropagate, PolicyFor(remote.OpForecast))
	assert.Equal(t, DefaultValue(5), PolicyFor(remote.OpFloodRisk))
	assert.Equal(t, "default(5)", PolicyFor(remote.OpFloodRisk).String())
}

// --- fallback-only mode ---

func TestFallbackOnly_NoRemoteCalls(t *testing.T) {
	src := &fakeSource{routes: []domain.Route{{ID: "remote"}}}
	repo, metrics := newTestRepo(src, Options{UseFallbackOnly: true})
	ctx := context.Background()

	route, ok := repo.GetRoute(ctx, "route1")
	require.True(t, ok)
	assert.Equal(t, "Downtown to Capitol Hill", route.Name)

	assert.Len(t, repo.ListRoutes(ctx), 3)

	forecast, err := repo.GetForecast(ctx, 1, 2, 3)
	require.NoError(t, err)
	require.Len(t, forecast, 3)
	assert.Equal(t, "2025-04-17", forecast[0].Date)

	_, err = repo.GetCurrentWeather(ctx, 1, 2)
	assert.ErrorIs(t, err, remote.ErrRemoteDisabled)

	assert.Equal(t, DefaultFloodRisk, repo.GetFloodRisk(ctx, 1, 2))

	assert.Equal(t, int32(0), src.calls.Load())
	assert.True(t, repo.FallbackOnly())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbackOnly))
}

func TestFallbackOnly_NilSource(t *testing.T) {
	repo, _ := newTestRepo(nil, Options{})
	assert.True(t, repo.FallbackOnly())
	assert.Len(t, repo.ListRoutes(context.Background()), 3)
}

func TestCustomDataset(t *testing.T) {
	ds := fallback.New([]domain.Route{{ID: "depot", RiskLevel: 4, Coordinates: []domain.Coordinate{{}, {}}}}, nil)
	repo := New(failingSource(), ds, Options{}, observability.NewMetricsForTesting(), observability.DiscardLogger())

	routes := repo.ListRoutes(context.Background())
	assert.Equal(t, []string{"depot"}, ids(routes))
	require.NoError(t, repo.CheckReadiness(context.Background()))
}

func TestCheckReadiness_EmptyCatalog(t *testing.T) {
	repo := New(nil, fallback.New(nil, nil), Options{}, observability.NewMetricsForTesting(), observability.DiscardLogger())
	assert.Error(t, repo.CheckReadiness(context.Background()))
}

// --- concurrency ---

func TestConcurrentCallersEachHitRemote(t *testing.T) {
	src := failingSource()
	repo, _ := newTestRepo(src, Options{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := repo.GetRoute(context.Background(), "route2")
			assert.True(t, ok)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), src.calls.Load(), "no coalescing of identical calls")
}

// --- end to end over HTTP ---

func TestEndToEnd_FailingServerThenClassify(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	metrics := observability.NewMetricsForTesting()
	client := remote.NewClient(remote.Options{BaseURL: srv.URL, Timeout: time.Second}, metrics, observability.DiscardLogger())
	repo := New(client, fallback.Builtin(), Options{}, metrics, observability.DiscardLogger())

	routes := repo.ListRoutes(context.Background())
	require.Len(t, routes, 3)

	var route2 *domain.Route
	for i := range routes {
		if routes[i].ID == "route2" {
			route2 = &routes[i]
		}
	}
	require.NotNil(t, route2)
	assert.Equal(t, 6, route2.RiskLevel)

	risk := domain.Classify(route2.RiskLevel)
	assert.Equal(t, domain.TierMedium, risk.Tier)
	assert.Equal(t, domain.Color("#FF9800"), risk.Color)
	assert.Equal(t, "Monitor weather conditions closely. Consider a backup delivery route.", risk.Recommendation)

	assert.Equal(t, 5, repo.GetFloodRisk(context.Background(), 47.67, -122.38))
	_, err := repo.GetForecast(context.Background(), 47.67, -122.38, 5)
	var se *remote.ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)

	assert.Equal(t, int32(3), hits.Load())
}

func TestEndToEnd_MalformedBodyAppliesPolicy(t *testing.T) {
	for _, body := range []string{`null`, `7 {garbage`} {
		t.Run(body, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			metrics := observability.NewMetricsForTesting()
			client := remote.NewClient(remote.Options{BaseURL: srv.URL, Timeout: time.Second}, metrics, observability.DiscardLogger())
			repo := New(client, fallback.Builtin(), Options{}, metrics, observability.DiscardLogger())
			ctx := context.Background()

			assert.Equal(t, []string{"route1", "route2", "route3"}, ids(repo.ListRoutes(ctx)))

			route, ok := repo.GetRoute(ctx, "route3")
			require.True(t, ok)
			assert.Equal(t, "route3", route.ID)
			assert.Equal(t, 8, route.RiskLevel)
			assert.NotEmpty(t, route.Coordinates)

			_, ok = repo.GetRoute(ctx, "nonexistent")
			assert.False(t, ok)

			assert.Equal(t, DefaultFloodRisk, repo.GetFloodRisk(ctx, 47.6, -122.3))

			var de *remote.DecodeError
			_, err := repo.GetForecast(ctx, 47.6, -122.3, 5)
			require.ErrorAs(t, err, &de)
			_, err = repo.GetCurrentWeather(ctx, 47.6, -122.3)
			require.ErrorAs(t, err, &de)

			assert.InDelta(t, 2, testutil.ToFloat64(metrics.PolicyApplied.WithLabelValues(remote.OpGetRoute, "fallback")), 0)
			assert.InDelta(t, 1, testutil.ToFloat64(metrics.PolicyApplied.WithLabelValues(remote.OpFloodRisk, "default")), 0)
		})
	}
}

func TestEndToEnd_FallbackOnlyMakesNoRequests(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	metrics := observability.NewMetricsForTesting()
	client := remote.NewClient(remote.Options{BaseURL: srv.URL, Timeout: time.Second}, metrics, observability.DiscardLogger())
	repo := New(client, fallback.Builtin(), Options{UseFallbackOnly: true}, metrics, observability.DiscardLogger())

	route, ok := repo.GetRoute(context.Background(), "route1")
	require.True(t, ok)
	assert.Equal(t, "Downtown to Capitol Hill", route.Name)
	assert.Equal(t, int32(0), hits.Load())
}

func ids(routes []domain.Route) []string {
	out := make([]string, len(routes))
	for i, r := range routes {
		out[i] = r.ID
	}
	return out
}
