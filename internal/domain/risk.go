package domain

// Tier is a discrete risk band derived from a 0–10 score.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Color is a rendering token (hex RGB) for a tier.
type Color string

// Tier boundaries are inclusive lower bounds.
const (
	HighRiskThreshold   = 7
	MediumRiskThreshold = 4
)

// tierColors is the single color table shared by route and forecast display.
var tierColors = map[Tier]Color{
	TierHigh:   "#F44336",
	TierMedium: "#FF9800",
	TierLow:    "#4CAF50",
}

// tierRecommendations holds the operational advice shown for route-level risk.
var tierRecommendations = map[Tier]string{
	TierHigh:   "Consider increasing inventory orders by 25% to account for potential delivery delays.",
	TierMedium: "Monitor weather conditions closely. Consider a backup delivery route.",
	TierLow:    "No action needed. Route appears stable.",
}

// RiskTier is the classification of a single risk score.
type RiskTier struct {
	Tier           Tier   `json:"tier"`
	Color          Color  `json:"color"`
	Recommendation string `json:"recommendation,omitempty"`
}

// Label returns the display label, e.g. "High".
func (t Tier) Label() string {
	switch t {
	case TierHigh:
		return "High"
	case TierMedium:
		return "Medium"
	default:
		return "Low"
	}
}

// Color returns the rendering color of the tier.
func (t Tier) Color() Color { return tierColors[t] }

// Recommendation returns the operational advice for a route in this tier.
func (t Tier) Recommendation() string { return tierRecommendations[t] }

// TierFor maps a risk score to its tier. Checked from the top down; scores
// outside 0–10 follow the same rule.
func TierFor(risk int) Tier {
	switch {
	case risk >= HighRiskThreshold:
		return TierHigh
	case risk >= MediumRiskThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// Classify maps a route risk score to its tier, color, and recommendation.
func Classify(risk int) RiskTier {
	tier := TierFor(risk)
	return RiskTier{
		Tier:           tier,
		Color:          tier.Color(),
		Recommendation: tier.Recommendation(),
	}
}

// ClassifyFlood maps a flood-risk score to its tier and color. Flood risk has
// no recommendation text.
func ClassifyFlood(risk int) RiskTier {
	tier := TierFor(risk)
	return RiskTier{
		Tier:  tier,
		Color: tier.Color(),
	}
}
