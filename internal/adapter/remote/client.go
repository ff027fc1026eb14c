// Package remote implements domain.RemoteSource over the route service's
// JSON HTTP API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/couchcryptid/route-risk-service/internal/domain"
	"github.com/couchcryptid/route-risk-service/internal/observability"
)

// Operation names, used in errors, logs, and metric labels.
const (
	OpListRoutes     = "list_routes"
	OpGetRoute       = "get_route"
	OpCurrentWeather = "current_weather"
	OpForecast       = "forecast"
	OpFloodRisk      = "flood_risk"
)

const (
	defaultTimeout = 10 * time.Second

	userAgent     = "route-risk-service"
	maxErrorBody  = 512
	requestIDHead = "X-Request-ID"
)

// Options configures a Client.
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	CircuitBreaker bool
}

// Client implements domain.RemoteSource. Its transport configuration is fixed
// at construction.
type Client struct {
	baseURL    string
	httpClient *http.Client
	header     http.Header
	breaker    *gobreaker.CircuitBreaker // nil when disabled
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a client for the route service at opts.BaseURL. A
// non-positive Timeout means the 10s default.
func NewClient(opts Options, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		header:  defaultHeader(),
		metrics: metrics,
		logger:  logger,
	}
	if opts.CircuitBreaker {
		c.breaker = newBreaker(logger)
	}
	return c
}

func defaultHeader() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("Content-Type", "application/json")
	h.Set("User-Agent", userAgent)
	return h
}

func newBreaker(logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "route-service",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// ListRoutes fetches every route.
func (c *Client) ListRoutes(ctx context.Context) ([]domain.Route, error) {
	var routes []domain.Route
	check := func() error {
		for i, r := range routes {
			if r.ID == "" {
				return fmt.Errorf("route %d has no id", i)
			}
		}
		return nil
	}
	if err := c.get(ctx, OpListRoutes, "/routes", nil, &routes, check); err != nil {
		return nil, err
	}
	return routes, nil
}

// GetRoute fetches a single route by id.
func (c *Client) GetRoute(ctx context.Context, id string) (domain.Route, error) {
	var route domain.Route
	check := func() error {
		if route.ID == "" {
			return errors.New("route has no id")
		}
		return nil
	}
	if err := c.get(ctx, OpGetRoute, "/routes/"+url.PathEscape(id), nil, &route, check); err != nil {
		return domain.Route{}, err
	}
	return route, nil
}

// CurrentWeather fetches current conditions for a coordinate.
func (c *Client) CurrentWeather(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error) {
	var snap domain.WeatherSnapshot
	if err := c.get(ctx, OpCurrentWeather, "/weather/current", coordParams(lat, lon), &snap, nil); err != nil {
		return domain.WeatherSnapshot{}, err
	}
	return snap, nil
}

// Forecast fetches a multi-day forecast for a coordinate.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, days int) (domain.Forecast, error) {
	params := coordParams(lat, lon)
	params.Set("days", strconv.Itoa(days))

	var forecast domain.Forecast
	if err := c.get(ctx, OpForecast, "/weather/forecast", params, &forecast, nil); err != nil {
		return nil, err
	}
	return forecast, nil
}

// FloodRisk fetches the flood-risk score for a coordinate. The body is a bare integer.
func (c *Client) FloodRisk(ctx context.Context, lat, lon float64) (int, error) {
	var risk int
	if err := c.get(ctx, OpFloodRisk, "/weather/flood-risk", coordParams(lat, lon), &risk, nil); err != nil {
		return 0, err
	}
	return risk, nil
}

func coordParams(lat, lon float64) url.Values {
	return url.Values{
		"latitude":  {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}
}

// get performs a single GET and decodes the JSON body into out. The body must
// hold exactly one non-null JSON value; check, when set, validates the decoded
// value. Any of these failures is a DecodeError.
func (c *Client) get(ctx context.Context, op, path string, params url.Values, out any, check func() error) (err error) {
	start := time.Now()
	defer func() {
		c.metrics.RemoteDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		c.metrics.RemoteRequests.WithLabelValues(op, Outcome(err)).Inc()
	}()

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header = c.header.Clone()
	reqID := uuid.NewString()
	req.Header.Set(requestIDHead, reqID)

	c.logger.Debug("remote request", "op", op, "url", u, "request_id", reqID)

	resp, err := c.do(req, op)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return serverError(op, resp)
	}

	if err := decodeBody(resp.Body, out); err != nil {
		return &DecodeError{Op: op, Err: err}
	}
	if check != nil {
		if err := check(); err != nil {
			return &DecodeError{Op: op, Err: err}
		}
	}
	return nil
}

func decodeBody(r io.Reader, out any) error {
	dec := json.NewDecoder(r)
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON value")
	}
	if bytes.Equal(raw, []byte("null")) {
		return errors.New("null body")
	}
	return json.Unmarshal(raw, out)
}

// do sends the request, through the circuit breaker when one is configured.
// Only transport failures and 5xx responses count against the breaker.
func (c *Client) do(req *http.Request, op string) (*http.Response, error) {
	if c.breaker == nil {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, &TransportError{Op: op, Err: err}
		}
		return resp, nil
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, &TransportError{Op: op, Err: err}
		}
		if resp.StatusCode >= 500 {
			defer resp.Body.Close()
			return nil, serverError(op, resp)
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &TransportError{Op: op, Err: err}
		}
		return nil, err
	}
	resp, ok := result.(*http.Response)
	if !ok {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("unexpected result type %T from circuit breaker", result)}
	}
	return resp, nil
}

func serverError(op string, resp *http.Response) *ServerError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &ServerError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
