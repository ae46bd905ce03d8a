package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// KPI CALCULATION
// ============================================================================

func TestComputeKPIsScenario(t *testing.T) {
	kpis := ComputeKPIs(scenario(t))

	assert.Equal(t, 35.0, kpis.TotalCO2)
	assert.InDelta(t, 71.4, kpis.ECAPercent, 1e-9)
	assert.InDelta(t, 28.6, kpis.NonECAPercent, 1e-9)
	assert.InDelta(t, 11.67, kpis.AvgCO2, 1e-9)
	assert.InDelta(t, 66.7, kpis.ComplianceRate, 1e-9)
	assert.Equal(t, 1, kpis.Alerts)
	assert.InDelta(t, 28.0, kpis.EmissionIntensity, 1e-9) // 35 / 30 h × 24
	assert.Equal(t, 0.0, kpis.ECAWeeklyChange, "no prior week in the slice")
}

func TestComputeKPIsEmpty(t *testing.T) {
	assert.Equal(t, KpiSet{}, ComputeKPIs(Dataset{}))
}

func TestAvgCO2IsPerVesselMean(t *testing.T) {
	a1 := rec(ZoneECA, FuelHFO, 10, day0)
	a2 := rec(ZoneECA, FuelHFO, 10, day0)
	a3 := rec(ZoneECA, FuelHFO, 10, day0)
	b := rec(ZoneECA, FuelHFO, 20, day0)
	a1.IMONumber, a2.IMONumber, a3.IMONumber = 9100001, 9100001, 9100001
	b.IMONumber = 9100002

	kpis := ComputeKPIs(mustDataset(t, a1, a2, a3, b))
	assert.Equal(t, 15.0, kpis.AvgCO2, "mean of per-vessel means, not the row mean 12.5")
}

func TestZoneSharesSumTo100(t *testing.T) {
	ds := mustDataset(t, fleet(200)...)
	for _, z := range [][]Zone{{ZoneECA}, {ZoneNonECA}, {ZoneECA, ZoneNonECA}} {
		slice := Apply(ds, DefaultFilters(ds).WithZones(z...))
		require.False(t, slice.IsEmpty())
		kpis := ComputeKPIs(slice)
		assert.InDelta(t, 100.0, kpis.ECAPercent+kpis.NonECAPercent, 0.11)
	}
}

func TestZeroTotalSharesAreZero(t *testing.T) {
	r := rec(ZoneECA, FuelHFO, 0, day0)
	r.DwellTimeHr = 0
	kpis := ComputeKPIs(mustDataset(t, r))
	assert.Equal(t, 0.0, kpis.ECAPercent)
	assert.Equal(t, 0.0, kpis.NonECAPercent)
	assert.Equal(t, 0.0, kpis.EmissionIntensity)
}

func TestECAWeeklyChange(t *testing.T) {
	last := day0.AddDate(0, 0, 13)
	ds := mustDataset(t,
		rec(ZoneECA, FuelHFO, 10, day0),                   // previous window (last-13)
		rec(ZoneECA, FuelHFO, 10, last.AddDate(0, 0, -7)), // previous window (last-7)
		rec(ZoneECA, FuelHFO, 25, last.AddDate(0, 0, -6)), // latest window
		rec(ZoneNonECA, FuelMGO, 8, last),                 // latest window, other zone
	)
	kpis := ComputeKPIs(ds)
	assert.InDelta(t, 25.0, kpis.ECAWeeklyChange, 1e-9) // (25-20)/20
}

func TestSafeRatio(t *testing.T) {
	assert.Equal(t, 0.0, safeRatio(5, 0))
	assert.Equal(t, 2.5, safeRatio(5, 2))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 71.4, Round(25.0/35.0*100, 1))
	assert.Equal(t, 2.68, Round(2.675, 2))
	assert.Equal(t, -1.5, Round(-1.45, 1))
	assert.True(t, math.IsNaN(Round(math.NaN(), 2)))
}
