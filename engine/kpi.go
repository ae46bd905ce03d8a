package engine

// ============================================================================
// KPI CALCULATION
// ============================================================================
// Divide-by-zero policy (the only one in the engine):
//   safeRatio(num, den) returns 0 when den is 0.
// The zero is a documented fallback for shares, rates and week-over-week
// change; it never claims "no change". Statistics that have no such fallback
// (correlation, regression) report ErrUndefinedMetric or a NullFloat instead.
// ============================================================================

// KpiSet holds the headline metrics for a slice.
type KpiSet struct {
	TotalCO2          float64 `json:"total_co2"`
	AvgCO2            float64 `json:"avg_co2"`
	ECAPercent        float64 `json:"eca_percent"`
	NonECAPercent     float64 `json:"non_eca_percent"`
	ComplianceRate    float64 `json:"compliance_rate"`
	Alerts            int     `json:"alerts"`
	EmissionIntensity float64 `json:"emission_intensity"`
	ECAWeeklyChange   float64 `json:"eca_weekly_change"`
}

// safeRatio divides, returning 0 when the denominator is 0.
func safeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// ComputeKPIs derives the KPI set. An empty dataset yields all zeros.
func ComputeKPIs(ds Dataset) KpiSet {
	if ds.IsEmpty() {
		return KpiSet{}
	}
	view := ds.View()

	total := SumMeasure(view, FieldCO2Tons)
	ecaTotal := zoneTotal(ds, ZoneECA)

	var ecaShare, nonECAShare float64
	if total != 0 {
		ecaShare = safeRatio(ecaTotal, total) * 100
		nonECAShare = 100 - ecaShare
	}

	dwell := SumMeasure(view, FieldDwellTimeHr)
	latest, previous := weekWindows(ds)
	ecaWeek := zoneTotal(latest, ZoneECA)
	ecaPrev := zoneTotal(previous, ZoneECA)

	return KpiSet{
		TotalCO2:          Round(total, 2),
		AvgCO2:            Round(perVesselMean(view), 2),
		ECAPercent:        Round(ecaShare, 1),
		NonECAPercent:     Round(nonECAShare, 1),
		ComplianceRate:    Round(complianceRate(view), 1),
		Alerts:            countAbove(ds, DefaultAlertThreshold),
		EmissionIntensity: Round(safeRatio(total, dwell)*24, 2),
		ECAWeeklyChange:   Round(percentChange(ecaWeek, ecaPrev), 1),
	}
}

// perVesselMean averages per-IMO means so vessels with many calls do not
// dominate.
func perVesselMean(view RecordView) float64 {
	groups := GroupAndAggregate(view, []string{FieldIMONumber}, FieldCO2Tons, "avg", "")
	if len(groups) == 0 {
		return 0
	}
	var sum float64
	for _, g := range groups {
		sum += g.Value
	}
	return sum / float64(len(groups))
}

// complianceRate is the mean of the compliance flags ×100.
func complianceRate(view RecordView) float64 {
	return AvgMeasure(view, FieldComplianceFlag) * 100
}

func zoneTotal(ds Dataset, z Zone) float64 {
	var total float64
	for _, r := range ds.records {
		if r.Zone == z {
			total += r.CO2Tons
		}
	}
	return total
}

func countAbove(ds Dataset, threshold float64) int {
	n := 0
	for _, r := range ds.records {
		if r.CO2Tons > threshold {
			n++
		}
	}
	return n
}

// percentChange is (curr-prev)/prev ×100, 0 when prev is 0.
func percentChange(curr, prev float64) float64 {
	return safeRatio(curr-prev, prev) * 100
}

// weekWindows splits out the trailing 7 days ending at the slice's latest day
// and the 7 days before them.
func weekWindows(ds Dataset) (latest, previous Dataset) {
	_, hi, ok := ds.DateRange()
	if !ok {
		return Dataset{}, Dataset{}
	}
	last := Day(hi)
	weekStart := last.AddDate(0, 0, -6)
	prevStart := last.AddDate(0, 0, -13)

	latest = ds.where(func(r EmissionRecord) bool {
		return !Day(r.Date).Before(weekStart)
	})
	previous = ds.where(func(r EmissionRecord) bool {
		d := Day(r.Date)
		return d.Before(weekStart) && !d.Before(prevStart)
	})
	return latest, previous
}
