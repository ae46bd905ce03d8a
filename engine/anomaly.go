package engine

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// ============================================================================
// ANOMALY & COMPLIANCE DETECTOR
// ============================================================================
// Two independent mechanisms over a slice:
//   Alerts     — fixed threshold, co2 > t, t in [5, 30]
//   Anomalies  — co2 > mean + k·σ (sample σ)
// Both return a Dataset ordered by co2 descending, ties in dataset order.
// That ordering is the one exception to "datasets are date-ordered".
// ============================================================================

// Alerts returns the records whose co2 exceeds threshold.
func Alerts(ds Dataset, threshold float64) (Dataset, error) {
	if err := checkThreshold(threshold); err != nil {
		return Dataset{}, err
	}
	return bySeverity(ds, func(r EmissionRecord) bool { return r.CO2Tons > threshold }), nil
}

// Anomalies returns the records whose co2 exceeds mean + sigma·σ.
// Fewer than 2 records means σ is undefined: no anomalies, no error.
func Anomalies(ds Dataset, sigma float64) (Dataset, error) {
	if sigma < 0 {
		return Dataset{}, fmt.Errorf("%w: sigma %.2f must not be negative", ErrInvalidArgument, sigma)
	}
	limit, ok := AnomalyLimit(ds, sigma)
	if !ok {
		return fromSorted([]EmissionRecord{}), nil
	}
	return bySeverity(ds, func(r EmissionRecord) bool { return r.CO2Tons > limit }), nil
}

// AnomalyLimit is mean + sigma·σ of co2 over the slice; false when the slice
// has fewer than 2 records.
func AnomalyLimit(ds Dataset, sigma float64) (float64, bool) {
	if ds.Len() < 2 {
		return 0, false
	}
	mean, std := stat.MeanStdDev(ds.column(func(r EmissionRecord) float64 { return r.CO2Tons }), nil)
	return mean + sigma*std, true
}

// bySeverity keeps matching records and orders them by co2 descending.
func bySeverity(ds Dataset, keep func(EmissionRecord) bool) Dataset {
	out := []EmissionRecord{}
	for _, r := range ds.sortedByCO2Desc() {
		if keep(r) {
			out = append(out, r)
		}
	}
	return fromSorted(out)
}

// ============================================================================
// COMPLIANCE SUMMARY
// ============================================================================

// ComplianceReport pairs the compliance rate with the alert rows.
type ComplianceReport struct {
	Rate      float64 `json:"rate"`
	Threshold float64 `json:"threshold"`
	Alerts    Dataset `json:"alerts"`
}

// ComplianceSummary reports the compliance rate (1 dp) and the records above
// threshold, most severe first.
func ComplianceSummary(ds Dataset, threshold float64) (ComplianceReport, error) {
	alerts, err := Alerts(ds, threshold)
	if err != nil {
		return ComplianceReport{}, err
	}
	var rate float64
	if !ds.IsEmpty() {
		rate = Round(complianceRate(ds.View()), 1)
	}
	return ComplianceReport{Rate: rate, Threshold: threshold, Alerts: alerts}, nil
}
