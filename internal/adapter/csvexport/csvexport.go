// Package csvexport renders route assessments as CSV for spreadsheet users.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/jszwec/csvutil"

	"github.com/couchcryptid/route-risk-service/internal/domain"
)

// Row is the flattened CSV form of a RouteAssessment.
type Row struct {
	ID             string  `csv:"id"`
	Name           string  `csv:"name"`
	RiskLevel      int     `csv:"risk_level"`
	Tier           string  `csv:"tier"`
	Color          string  `csv:"color"`
	Recommendation string  `csv:"recommendation"`
	StartLatitude  float64 `csv:"start_latitude"`
	StartLongitude float64 `csv:"start_longitude"`
	EndLatitude    float64 `csv:"end_latitude"`
	EndLongitude   float64 `csv:"end_longitude"`
	FloodRisk      *int    `csv:"flood_risk,omitempty"`
	Distance       float64 `csv:"distance_miles"`
	EstimatedTime  int     `csv:"estimated_minutes"`
	Supplier       string  `csv:"supplier"`
	AssessedAt     string  `csv:"assessed_at"`
}

// ToRow flattens an assessment.
func ToRow(a domain.RouteAssessment) Row {
	return Row{
		ID:             a.Route.ID,
		Name:           a.Route.Name,
		RiskLevel:      a.Route.RiskLevel,
		Tier:           a.Risk.Tier.Label(),
		Color:          string(a.Risk.Color),
		Recommendation: a.Risk.Recommendation,
		StartLatitude:  a.Start.Latitude,
		StartLongitude: a.Start.Longitude,
		EndLatitude:    a.End.Latitude,
		EndLongitude:   a.End.Longitude,
		FloodRisk:      a.FloodRisk,
		Distance:       a.Route.Distance,
		EstimatedTime:  a.Route.EstimatedDeliveryTime,
		Supplier:       a.Route.Supplier,
		AssessedAt:     a.AssessedAt.Format(time.RFC3339),
	}
}

// Write encodes the assessments to w with a header line. An empty slice
// still produces the header.
func Write(w io.Writer, assessments []domain.RouteAssessment) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	if err := enc.EncodeHeader(Row{}); err != nil {
		return fmt.Errorf("encode csv header: %w", err)
	}
	for _, a := range assessments {
		if err := enc.Encode(ToRow(a)); err != nil {
			return fmt.Errorf("encode route %s: %w", a.Route.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
