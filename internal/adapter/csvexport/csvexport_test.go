package csvexport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/route-risk-service/internal/domain"
	"github.com/couchcryptid/route-risk-service/internal/fallback"
)

func TestWrite_HeaderAndRows(t *testing.T) {
	assessments := domain.AssessAll(fallback.Builtin().Routes())
	assessments[2] = assessments[2].WithFloodRisk(8)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, assessments))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "id,name,risk_level,tier,color,recommendation,"))

	rows, err := readRows(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "route1", rows[0].ID)
	assert.Equal(t, "Low", rows[0].Tier)
	assert.Equal(t, "#4CAF50", rows[0].Color)
	assert.Nil(t, rows[0].FloodRisk)
	assert.InDelta(t, 47.6062, rows[0].StartLatitude, 1e-9)
	assert.InDelta(t, -122.3142, rows[0].EndLongitude, 1e-9)

	assert.Equal(t, "High", rows[2].Tier)
	require.NotNil(t, rows[2].FloodRisk)
	assert.Equal(t, 8, *rows[2].FloodRisk)
	assert.Contains(t, rows[2].Recommendation, "25%")
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))

	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))

	rows, err := readRows(&buf)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestToRow_AssessedAtRFC3339(t *testing.T) {
	a := domain.Assess(domain.Route{ID: "r", RiskLevel: 5})
	a.AssessedAt = time.Date(2025, 4, 17, 9, 30, 0, 0, time.UTC)

	row := ToRow(a)
	assert.Equal(t, "2025-04-17T09:30:00Z", row.AssessedAt)
	assert.Equal(t, "Medium", row.Tier)
}

// readRows decodes rows produced by Write.
func readRows(r io.Reader) ([]Row, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("create csv decoder: %w", err)
	}
	var rows []Row
	if err := dec.Decode(&rows); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode csv rows: %w", err)
	}
	return rows, nil
}
