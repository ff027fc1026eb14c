package domain

import "time"

// RouteAssessment is a route together with its classification and the
// start/end marker pair consumed by map views.
type RouteAssessment struct {
	Route      Route      `json:"route"`
	Risk       RiskTier   `json:"risk"`
	Start      Coordinate `json:"start"`
	End        Coordinate `json:"end"`
	FloodRisk  *int       `json:"floodRisk,omitempty"`
	FloodTier  *RiskTier  `json:"floodTier,omitempty"`
	AssessedAt time.Time  `json:"assessedAt"`
}

// Assess classifies a route and stamps the assessment with the current time.
func Assess(route Route) RouteAssessment {
	start, end, _ := route.Endpoints()
	return RouteAssessment{
		Route:      route,
		Risk:       Classify(route.RiskLevel),
		Start:      start,
		End:        end,
		AssessedAt: clock.Now().UTC(),
	}
}

// WithFloodRisk attaches a flood-risk reading taken at the route start.
func (a RouteAssessment) WithFloodRisk(risk int) RouteAssessment {
	tier := ClassifyFlood(risk)
	a.FloodRisk = &risk
	a.FloodTier = &tier
	return a
}

// AssessAll classifies routes in order.
func AssessAll(routes []Route) []RouteAssessment {
	out := make([]RouteAssessment, len(routes))
	for i, r := range routes {
		out[i] = Assess(r)
	}
	return out
}
