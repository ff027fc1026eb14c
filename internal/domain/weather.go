package domain

// ForecastDay is one day of a weather forecast.
type ForecastDay struct {
	Date          string  `json:"date" yaml:"date"` // yyyy-mm-dd
	Conditions    string  `json:"conditions" yaml:"conditions"`
	Temperature   int     `json:"temperature" yaml:"temperature"`     // °F
	Precipitation float64 `json:"precipitation" yaml:"precipitation"` // inches
	FloodRisk     int     `json:"floodRisk" yaml:"floodRisk"`         // 0–10
}

// Forecast is a chronological sequence of days; index 0 is the soonest.
type Forecast []ForecastDay

// Clone returns a copy of the first n days (all days when n <= 0 or n exceeds the length).
func (f Forecast) Clone(n int) Forecast {
	if n <= 0 || n > len(f) {
		n = len(f)
	}
	out := make(Forecast, n)
	copy(out, f[:n])
	return out
}

// WeatherSnapshot is the current-conditions object returned by the remote
// weather endpoint.
type WeatherSnapshot struct {
	Latitude                 float64 `json:"latitude"`
	Longitude                float64 `json:"longitude"`
	Location                 string  `json:"location,omitempty"`
	Conditions               string  `json:"conditions"`
	Description              string  `json:"description,omitempty"`
	TemperatureFahrenheit    float64 `json:"temperatureFahrenheit"`
	Humidity                 float64 `json:"humidity"`
	WindSpeedMph             float64 `json:"windSpeedMph"`
	WindDirection            int     `json:"windDirection"`
	PrecipitationInches      float64 `json:"precipitationInches"`
	PrecipitationProbability float64 `json:"precipitationProbability"`
	RecentRainfallInches     float64 `json:"recentRainfallInches"` // past 24h
	FloodRiskLevel           int     `json:"floodRiskLevel"`
	ObservationTime          string  `json:"observationTime,omitempty"` // backend local time, no zone
	RetrievalTime            string  `json:"retrievalTime,omitempty"`
}
