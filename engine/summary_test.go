package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// SUMMARY
// ============================================================================

func TestBuildSummaryScenario(t *testing.T) {
	s := BuildSummary(scenario(t), 0)
	assert.Equal(t, 25.0, s.ECATotal)
	assert.Equal(t, 10.0, s.NonECATotal)
	assert.InDelta(t, 66.7, s.Compliance, 1e-9)
	assert.Equal(t, 3, s.Records)
	require.Len(t, s.TopEmitters, 3)
	assert.Equal(t, 20.0, s.TopEmitters[0].CO2Tons)
	assert.Equal(t, 5.0, s.TopEmitters[2].CO2Tons)
}

func TestBuildSummaryTopNTies(t *testing.T) {
	var records []EmissionRecord
	for i := 0; i < 8; i++ {
		r := rec(ZoneECA, FuelHFO, 12, day0.AddDate(0, 0, i))
		r.IMONumber = 9200000 + i
		records = append(records, r)
	}
	s := BuildSummary(mustDataset(t, records...), 5)
	require.Len(t, s.TopEmitters, DefaultTopN)
	for i, e := range s.TopEmitters {
		assert.Equal(t, 9200000+i, e.IMONumber, "ties keep dataset order")
	}

	s = BuildSummary(mustDataset(t, records...), 2)
	assert.Len(t, s.TopEmitters, 2)
}

func TestBuildSummaryEmpty(t *testing.T) {
	s := BuildSummary(Dataset{}, 5)
	assert.Equal(t, 0.0, s.ECATotal)
	assert.Equal(t, 0.0, s.Compliance)
	assert.NotNil(t, s.TopEmitters)
	assert.Empty(t, s.TopEmitters)
}

// ============================================================================
// BRIEF & INSIGHT
// ============================================================================

func TestBuildBrief(t *testing.T) {
	at := time.Date(2025, 3, 31, 9, 5, 0, 0, time.UTC)
	brief := BuildBrief(BuildSummary(scenario(t), 5), at)

	lines := strings.Split(brief, "\n")
	assert.Equal(t, BriefTitle, lines[0])
	assert.Contains(t, brief, "ECA Total Emissions: 25.00 t")
	assert.Contains(t, brief, "Non-ECA Total Emissions: 10.00 t")
	assert.Contains(t, brief, "Compliance Rate: 66.7%")
	assert.Contains(t, brief, "- MV_Test (9100200) – 20.00 t CO₂ – ECA")
	assert.Equal(t, "Generated: 2025-03-31 09:05 UTC", lines[len(lines)-1])
}

func TestQuickInsight(t *testing.T) {
	assert.Equal(t, "No telemetry available for the selected slice.", QuickInsight(Dataset{}))

	last := day0.AddDate(0, 0, 13)
	rising := mustDataset(t,
		rec(ZoneECA, FuelHFO, 10, day0),
		rec(ZoneECA, FuelHFO, 20, last),
	)
	assert.True(t, strings.HasPrefix(QuickInsight(rising), "⚠ ECA CO₂ rose 100%"))

	falling := mustDataset(t,
		rec(ZoneNonECA, FuelMGO, 20, day0),
		rec(ZoneNonECA, FuelMGO, 10, last),
	)
	assert.Contains(t, QuickInsight(falling), "Non-ECA CO₂ fell 50%")

	steady := mustDataset(t,
		rec(ZoneECA, FuelHFO, 10, day0),
		rec(ZoneECA, FuelHFO, 10, last),
	)
	assert.Contains(t, QuickInsight(steady), "steady")
}

func TestFormatTons(t *testing.T) {
	assert.Equal(t, "1,234.50 t", FormatTons(1234.5))
	assert.Equal(t, "-12.00 t", FormatTons(-12))
	assert.Equal(t, "0.00 t", FormatTons(0))
	assert.Equal(t, "1,000,000", FormatInt(1000000))
}
