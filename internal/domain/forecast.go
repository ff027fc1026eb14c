package domain

// DayRisk pairs a forecast day with the classification of its flood risk.
type DayRisk struct {
	ForecastDay
	Risk RiskTier `json:"risk"`
}

// ClassifyDay classifies a forecast day by its flood risk.
func ClassifyDay(day ForecastDay) DayRisk {
	return DayRisk{ForecastDay: day, Risk: ClassifyFlood(day.FloodRisk)}
}

// ClassifyForecast classifies every day, preserving order.
func ClassifyForecast(f Forecast) []DayRisk {
	out := make([]DayRisk, len(f))
	for i, day := range f {
		out[i] = ClassifyDay(day)
	}
	return out
}

// ForecastSummary aggregates a forecast into the figures a route detail view
// needs at a glance.
type ForecastSummary struct {
	Days               int      `json:"days"`
	TotalPrecipitation float64  `json:"totalPrecipitation"` // inches
	PeakFloodRisk      int      `json:"peakFloodRisk"`
	PeakDate           string   `json:"peakDate,omitempty"`
	Risk               RiskTier `json:"risk"`
}

// SummarizeForecast totals precipitation and finds the worst flood-risk day.
// Ties keep the earliest day. An empty forecast yields a zero-day Low summary.
func SummarizeForecast(f Forecast) ForecastSummary {
	s := ForecastSummary{Days: len(f)}
	for i, day := range f {
		s.TotalPrecipitation += day.Precipitation
		if i == 0 || day.FloodRisk > s.PeakFloodRisk {
			s.PeakFloodRisk = day.FloodRisk
			s.PeakDate = day.Date
		}
	}
	s.Risk = ClassifyFlood(s.PeakFloodRisk)
	return s
}
