package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// TIME SERIES
// ============================================================================

func TestTimeSeriesKeepsAbsentZoneColumn(t *testing.T) {
	ds := mustDataset(t,
		rec(ZoneECA, FuelHFO, 12, day0),
		rec(ZoneECA, FuelMGO, 3, day0.Add(5*time.Hour)),
		rec(ZoneECA, FuelHFO, 7, day0.AddDate(0, 0, 1)),
	)
	series := TimeSeries(ds)

	assert.Equal(t, []Zone{ZoneECA, ZoneNonECA}, series.Columns)
	require.Len(t, series.Rows, 2)
	assert.Equal(t, day0, series.Rows[0].Date)
	assert.Equal(t, 15.0, series.Rows[0].Values[ZoneECA])
	assert.Equal(t, 7.0, series.Rows[1].Values[ZoneECA])
	for _, row := range series.Rows {
		v, ok := row.Values[ZoneNonECA]
		assert.True(t, ok, "Non-ECA column present")
		assert.Equal(t, 0.0, v)
		assert.Equal(t, row.Values[ZoneECA], row.Delta)
	}
}

func TestTimeSeriesEmpty(t *testing.T) {
	series := TimeSeries(Dataset{})
	assert.Len(t, series.Columns, 2)
	assert.Empty(t, series.Rows)
}

func TestTimeSeriesDatesAscending(t *testing.T) {
	series := TimeSeries(mustDataset(t, fleet(120)...))
	require.Len(t, series.Rows, 30)
	for i := 1; i < len(series.Rows); i++ {
		assert.True(t, series.Rows[i].Date.After(series.Rows[i-1].Date))
	}
}

// ============================================================================
// GROUPED TOTALS
// ============================================================================

func TestFuelMix(t *testing.T) {
	mix := FuelMix(scenario(t))
	assert.Equal(t, []string{FieldFuelType, FieldZone}, mix.Dimensions)
	require.Len(t, mix.Rows, 3)
	assert.Equal(t, []string{"HFO", "ECA"}, mix.Rows[0].Keys)
	assert.Equal(t, []string{"LNG", "ECA"}, mix.Rows[1].Keys)
	assert.Equal(t, []string{"MGO", "Non-ECA"}, mix.Rows[2].Keys)
	assert.Equal(t, 35.0, mix.Sum())
}

func TestGroupedTotalsTotals(t *testing.T) {
	ds := mustDataset(t,
		rec(ZoneECA, FuelHFO, 4, day0),
		rec(ZoneNonECA, FuelHFO, 6, day0),
		rec(ZoneNonECA, FuelLNG, 5, day0),
	)
	totals := FuelMix(ds).Totals()
	require.Len(t, totals, 2)
	assert.Equal(t, "HFO", totals[0].Keys[0])
	assert.Equal(t, 10.0, totals[0].CO2Tons)
	assert.Equal(t, "LNG", totals[1].Keys[0])
	assert.Equal(t, 5.0, totals[1].CO2Tons)
}

func TestMonthlyTrend(t *testing.T) {
	ds := mustDataset(t,
		rec(ZoneECA, FuelHFO, 4, day0.AddDate(0, -1, 3)),
		rec(ZoneECA, FuelHFO, 6, day0),
		rec(ZoneNonECA, FuelHFO, 5, day0.AddDate(0, 0, 10)),
	)
	trend := MonthlyTrend(ds)
	require.Len(t, trend.Rows, 3)
	assert.Equal(t, []string{"2025-02", "ECA"}, trend.Rows[0].Keys)
	assert.Equal(t, []string{"2025-03", "ECA"}, trend.Rows[1].Keys)
	assert.Equal(t, []string{"2025-03", "Non-ECA"}, trend.Rows[2].Keys)
}

// ============================================================================
// ZONE SNAPSHOT
// ============================================================================

func TestZoneSnapshot(t *testing.T) {
	cards := ZoneSnapshot(scenario(t), DefaultAlertThreshold)
	require.Len(t, cards, 2)

	eca := cards[0]
	assert.Equal(t, ZoneECA, eca.Zone)
	assert.Equal(t, 25.0, eca.CO2Tons)
	assert.Equal(t, Some(1.25), eca.Intensity) // mean(20/10, 5/10)
	assert.Equal(t, 50.0, eca.Compliance)
	assert.Equal(t, 1, eca.Alerts)

	non := cards[1]
	assert.Equal(t, ZoneNonECA, non.Zone)
	assert.Equal(t, 0, non.Alerts)
}

func TestZoneSnapshotUndefinedIntensity(t *testing.T) {
	r := rec(ZoneNonECA, FuelMGO, 9, day0)
	r.DwellTimeHr = 0
	cards := ZoneSnapshot(mustDataset(t, r), DefaultAlertThreshold)
	require.Len(t, cards, 1)
	assert.False(t, cards[0].Intensity.Valid)
}
