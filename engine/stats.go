package engine

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ============================================================================
// STATISTICS — correlation matrix and speed/co2 regression
// ============================================================================
// Computed in float64 by gonum; rounding to 2 dp happens only when the
// result is assembled.
// ============================================================================

// CorrelationMetrics is the fixed metric set, in matrix order.
var CorrelationMetrics = []string{FieldSpeedKnots, FieldDwellTimeHr, FieldCO2Tons, FieldSOxTons, FieldNOxTons}

// CorrelationMatrix holds pairwise Pearson coefficients. A cell is undefined
// when the slice has fewer than 2 records or either column has zero variance.
type CorrelationMatrix struct {
	Metrics []string      `json:"metrics"`
	Cells   [][]NullFloat `json:"cells"`
}

// At returns the coefficient for two metrics.
func (m CorrelationMatrix) At(a, b string) NullFloat {
	i, j := indexOf(m.Metrics, a), indexOf(m.Metrics, b)
	if i < 0 || j < 0 {
		return NullFloat{}
	}
	return m.Cells[i][j]
}

// Correlation builds the Pearson matrix over CorrelationMetrics.
func Correlation(ds Dataset) CorrelationMatrix {
	view := ds.View()
	cols := make([][]float64, len(CorrelationMetrics))
	defined := make([]bool, len(CorrelationMetrics))
	for k, metric := range CorrelationMetrics {
		cols[k] = measureColumn(view, metric)
		defined[k] = len(cols[k]) >= 2 && stat.Variance(cols[k], nil) > 0
	}

	cells := make([][]NullFloat, len(CorrelationMetrics))
	for i := range CorrelationMetrics {
		cells[i] = make([]NullFloat, len(CorrelationMetrics))
		for j := range CorrelationMetrics {
			switch {
			case !defined[i] || !defined[j]:
				cells[i][j] = NullFloat{}
			case i == j:
				cells[i][j] = Some(1)
			default:
				cells[i][j] = Some(Round(stat.Correlation(cols[i], cols[j], nil), 2))
			}
		}
	}
	return CorrelationMatrix{Metrics: append([]string(nil), CorrelationMetrics...), Cells: cells}
}

// ============================================================================
// REGRESSION — OLS co2 ~ speed
// ============================================================================

// FitPoints is how many points the fitted line is sampled at.
const FitPoints = 50

// RegressionFit is an ordinary-least-squares fit of co2 on speed.
type RegressionFit struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	// R is undefined when co2 has zero variance.
	R    NullFloat    `json:"r"`
	N    int          `json:"n"`
	Line []ChartPoint `json:"line"`
	// Observed is the (speed, co2) point cloud in record order.
	Observed []ChartPoint `json:"observed"`
}

// Regression fits co2_tons = intercept + slope·speed_knots. Fails with
// ErrUndefinedMetric when the slice has fewer than 2 records or speed has
// zero variance.
func Regression(ds Dataset) (RegressionFit, error) {
	view := ds.View()
	x := measureColumn(view, FieldSpeedKnots)
	y := measureColumn(view, FieldCO2Tons)

	if len(x) < 2 {
		return RegressionFit{}, fmt.Errorf("%w: regression needs at least 2 records, have %d", ErrUndefinedMetric, len(x))
	}
	if stat.Variance(x, nil) == 0 {
		return RegressionFit{}, fmt.Errorf("%w: speed has zero variance", ErrUndefinedMetric)
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)

	r := NullFloat{}
	if stat.Variance(y, nil) > 0 {
		r = Some(Round(stat.Correlation(x, y, nil), 2))
	}

	xs := floats.Span(make([]float64, FitPoints), floats.Min(x), floats.Max(x))
	line := make([]ChartPoint, len(xs))
	for i, sx := range xs {
		line[i] = ChartPoint{
			Label: fmt.Sprintf("%.2f", sx),
			Value: Round(intercept+slope*sx, 2),
		}
	}

	observed := make([]ChartPoint, len(x))
	for i := range x {
		observed[i] = ChartPoint{Label: fmt.Sprintf("%.2f", x[i]), Value: y[i]}
	}

	return RegressionFit{
		Slope:     Round(slope, 2),
		Intercept: Round(intercept, 2),
		R:         r,
		N:         len(x),
		Line:      line,
		Observed:  observed,
	}, nil
}

func measureColumn(view RecordView, measure string) []float64 {
	out := make([]float64, view.Len())
	for i := range out {
		out[i] = view.Measure(i, measure)
	}
	return out
}

func indexOf(items []string, s string) int {
	for i, item := range items {
		if item == s {
			return i
		}
	}
	return -1
}
