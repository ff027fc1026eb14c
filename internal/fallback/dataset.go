// Package fallback holds the static route and forecast catalog served when the
// remote route service is unavailable or disabled.
package fallback

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/route-risk-service/internal/domain"
)

//go:embed catalog.yaml
var builtinCatalog []byte

// Dataset is an immutable catalog of routes and a forecast. It is safe to
// share between goroutines; every accessor returns a copy.
type Dataset struct {
	routes   []domain.Route
	forecast domain.Forecast
}

type catalogFile struct {
	Routes   []domain.Route       `yaml:"routes"`
	Forecast []domain.ForecastDay `yaml:"forecast"`
}

// Builtin returns the catalog compiled into the binary.
func Builtin() *Dataset {
	ds, err := Parse(builtinCatalog)
	if err != nil {
		panic(fmt.Sprintf("fallback: built-in catalog is invalid: %v", err))
	}
	return ds
}

// Load reads a catalog from path, or returns the built-in catalog when path is empty.
func Load(path string) (*Dataset, error) {
	if path == "" {
		return Builtin(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fallback catalog: %w", err)
	}
	ds, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fallback catalog %s: %w", path, err)
	}
	return ds, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Dataset, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := validate(f); err != nil {
		return nil, err
	}
	return New(f.Routes, f.Forecast), nil
}

// New builds a Dataset from already-decoded values. The inputs are copied.
func New(routes []domain.Route, forecast domain.Forecast) *Dataset {
	ds := &Dataset{
		routes:   make([]domain.Route, len(routes)),
		forecast: forecast.Clone(0),
	}
	for i, r := range routes {
		ds.routes[i] = r.Clone()
	}
	return ds
}

func validate(f catalogFile) error {
	if len(f.Routes) == 0 {
		return errors.New("catalog has no routes")
	}
	seen := make(map[string]bool, len(f.Routes))
	for i, r := range f.Routes {
		if r.ID == "" {
			return fmt.Errorf("route %d has no id", i)
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate route id %q", r.ID)
		}
		seen[r.ID] = true
		if len(r.Coordinates) < 2 {
			return fmt.Errorf("route %q needs at least 2 coordinates, has %d", r.ID, len(r.Coordinates))
		}
	}
	return nil
}

// Routes returns every route in catalog order.
func (d *Dataset) Routes() []domain.Route {
	out := make([]domain.Route, len(d.routes))
	for i, r := range d.routes {
		out[i] = r.Clone()
	}
	return out
}

// Route returns the first route whose id matches.
func (d *Dataset) Route(id string) (domain.Route, bool) {
	for _, r := range d.routes {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return domain.Route{}, false
}

// Forecast returns the first days of the catalog forecast (all of it when days <= 0).
func (d *Dataset) Forecast(days int) domain.Forecast {
	return d.forecast.Clone(days)
}

// Len reports the number of routes.
func (d *Dataset) Len() int {
	return len(d.routes)
}
