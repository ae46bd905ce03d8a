package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linear builds records where co2 = 2·speed + 1 exactly and sox/dwell are constant.
func linear(t *testing.T) Dataset {
	var records []EmissionRecord
	for i, speed := range []float64{8, 10, 12, 14} {
		r := rec(ZoneECA, FuelHFO, 2*speed+1, day0.AddDate(0, 0, i))
		r.SpeedKnots = speed
		r.NOxTons = float64(i) * 0.5
		records = append(records, r)
	}
	return mustDataset(t, records...)
}

// ============================================================================
// CORRELATION
// ============================================================================

func TestCorrelationPerfectAndUndefined(t *testing.T) {
	m := Correlation(linear(t))
	assert.Equal(t, CorrelationMetrics, m.Metrics)

	assert.Equal(t, Some(1), m.At(FieldSpeedKnots, FieldCO2Tons))
	assert.Equal(t, Some(1), m.At(FieldCO2Tons, FieldCO2Tons))
	assert.Equal(t, Some(1), m.At(FieldNOxTons, FieldSpeedKnots))

	assert.False(t, m.At(FieldSOxTons, FieldCO2Tons).Valid, "constant sox has zero variance")
	assert.False(t, m.At(FieldDwellTimeHr, FieldDwellTimeHr).Valid)
	assert.False(t, m.At("unknown", FieldCO2Tons).Valid)
}

func TestCorrelationSymmetricAndBounded(t *testing.T) {
	m := Correlation(mustDataset(t, fleet(150)...))
	for i := range m.Metrics {
		for j := range m.Metrics {
			c := m.Cells[i][j]
			require.True(t, c.Valid)
			assert.Equal(t, c, m.Cells[j][i])
			assert.LessOrEqual(t, c.Float64, 1.0)
			assert.GreaterOrEqual(t, c.Float64, -1.0)
		}
	}
}

func TestCorrelationSingleRecord(t *testing.T) {
	m := Correlation(mustDataset(t, rec(ZoneECA, FuelHFO, 10, day0)))
	for i := range m.Metrics {
		for j := range m.Metrics {
			assert.False(t, m.Cells[i][j].Valid)
		}
	}
}

// ============================================================================
// REGRESSION
// ============================================================================

func TestRegressionExactLine(t *testing.T) {
	fit, err := Regression(linear(t))
	require.NoError(t, err)

	assert.Equal(t, 2.0, fit.Slope)
	assert.Equal(t, 1.0, fit.Intercept)
	assert.Equal(t, Some(1), fit.R)
	assert.Equal(t, 4, fit.N)

	require.Len(t, fit.Line, FitPoints)
	assert.Equal(t, "8.00", fit.Line[0].Label)
	assert.Equal(t, "14.00", fit.Line[FitPoints-1].Label)
	assert.InDelta(t, 17.0, fit.Line[0].Value, 1e-9)
	assert.InDelta(t, 29.0, fit.Line[FitPoints-1].Value, 1e-9)

	require.Len(t, fit.Observed, 4)
	for i, r := range linear(t).Records() {
		assert.Equal(t, fmt.Sprintf("%.2f", r.SpeedKnots), fit.Observed[i].Label)
		assert.Equal(t, r.CO2Tons, fit.Observed[i].Value)
	}
}

func TestRegressionChartCarriesObservedPoints(t *testing.T) {
	fit, err := Regression(linear(t))
	require.NoError(t, err)

	chart := BuildRegressionChart(fit, "Speed vs CO2")
	require.NotNil(t, chart)
	assert.Equal(t, "scatter", chart.ChartType)
	require.Len(t, chart.Series, 2)
	assert.Equal(t, "Observed", chart.Series[0].Name)
	assert.Len(t, chart.Series[0].Data, fit.N)
	assert.Len(t, chart.Series[1].Data, FitPoints)
}

func TestRegressionUndefined(t *testing.T) {
	_, err := Regression(mustDataset(t, rec(ZoneECA, FuelHFO, 10, day0)))
	assert.ErrorIs(t, err, ErrUndefinedMetric)

	// Every fixture record sails at 12 kn.
	_, err = Regression(scenario(t))
	assert.ErrorIs(t, err, ErrUndefinedMetric)

	_, err = Regression(Dataset{})
	assert.ErrorIs(t, err, ErrUndefinedMetric)
}

func TestRegressionFlatCO2HasUndefinedR(t *testing.T) {
	a := rec(ZoneECA, FuelHFO, 10, day0)
	b := rec(ZoneECA, FuelHFO, 10, day0)
	b.SpeedKnots = 16
	fit, err := Regression(mustDataset(t, a, b))
	require.NoError(t, err)
	assert.Equal(t, 0.0, fit.Slope)
	assert.Equal(t, 10.0, fit.Intercept)
	assert.False(t, fit.R.Valid)
}
