package domain

// Coordinate is a WGS-84 latitude/longitude pair.
type Coordinate struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Route is a planned delivery path annotated with a weather-driven risk score.
type Route struct {
	ID                    string       `json:"id" yaml:"id"`
	Name                  string       `json:"name" yaml:"name"`
	Description           string       `json:"description" yaml:"description"`
	RiskLevel             int          `json:"riskLevel" yaml:"riskLevel"` // 0–10
	WeatherConditions     string       `json:"weatherConditions" yaml:"weatherConditions"`
	Coordinates           []Coordinate `json:"coordinates" yaml:"coordinates"`
	EstimatedDeliveryTime int          `json:"estimatedDeliveryTime" yaml:"estimatedDeliveryTime"` // minutes
	Distance              float64      `json:"distance" yaml:"distance"`                           // miles
	Supplier              string       `json:"supplier" yaml:"supplier"`
	AffectedProducts      []string     `json:"affectedProducts" yaml:"affectedProducts"`
}

// Endpoints returns the first and last coordinate of the route path.
// ok is false when the route has no coordinates.
func (r Route) Endpoints() (start, end Coordinate, ok bool) {
	if len(r.Coordinates) == 0 {
		return Coordinate{}, Coordinate{}, false
	}
	return r.Coordinates[0], r.Coordinates[len(r.Coordinates)-1], true
}

// Clone returns a deep copy so callers can never alias another snapshot's slices.
func (r Route) Clone() Route {
	c := r
	if r.Coordinates != nil {
		c.Coordinates = append([]Coordinate(nil), r.Coordinates...)
	}
	if r.AffectedProducts != nil {
		c.AffectedProducts = append([]string(nil), r.AffectedProducts...)
	}
	return c
}
