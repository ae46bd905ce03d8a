package engine

import (
	"time"
)

// ============================================================================
// SERIES & ROLLUPS — time series pivot, fuel mix, monthly trend, zone cards
// ============================================================================
// Grouped sums run through the group → aggregate → sort pipeline over the
// dataset's RecordView. Values are left unrounded; builders round for display.
// ============================================================================

// PivotedSeries is one row per day with one column per zone.
// Both zone columns are always present.
type PivotedSeries struct {
	Columns []Zone      `json:"columns"`
	Rows    []SeriesRow `json:"rows"`
}

// SeriesRow is a single day of the pivot.
type SeriesRow struct {
	Date   time.Time        `json:"date"`
	Values map[Zone]float64 `json:"values"`
	// Delta is ECA minus Non-ECA, the differential overlay.
	Delta float64 `json:"delta"`
}

// TimeSeries groups by (day, zone), sums co2 and pivots. Missing
// (day, zone) combinations are filled with 0.
func TimeSeries(ds Dataset) PivotedSeries {
	series := PivotedSeries{Columns: append([]Zone(nil), Zones...), Rows: []SeriesRow{}}

	groups := GroupAndAggregate(ds.View(), []string{FieldDate, FieldZone}, FieldCO2Tons, "sum", "date_asc")
	for _, g := range groups {
		day, err := time.Parse(time.DateOnly, g.Key)
		if err != nil {
			continue
		}
		row := SeriesRow{Date: day, Values: make(map[Zone]float64, len(Zones))}
		for _, z := range Zones {
			row.Values[z] = 0
		}
		for _, sub := range g.SubGroups {
			row.Values[Zone(sub.Key)] = sub.Value
		}
		row.Delta = row.Values[ZoneECA] - row.Values[ZoneNonECA]
		series.Rows = append(series.Rows, row)
	}
	return series
}

// ============================================================================
// GROUPED TOTALS
// ============================================================================

// GroupedTotals is a two-key grouped co2 sum, e.g. (fuel_type, zone).
type GroupedTotals struct {
	Dimensions []string     `json:"dimensions"`
	Rows       []GroupedRow `json:"rows"`
}

// GroupedRow is one (key, key) cell.
type GroupedRow struct {
	Keys    []string `json:"keys"`
	CO2Tons float64  `json:"co2_tons"`
}

// Totals collapses rows onto their first key, in row order.
func (g GroupedTotals) Totals() []GroupedRow {
	index := make(map[string]int)
	var out []GroupedRow
	for _, row := range g.Rows {
		if len(row.Keys) == 0 {
			continue
		}
		key := row.Keys[0]
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, GroupedRow{Keys: []string{key}})
		}
		out[i].CO2Tons += row.CO2Tons
	}
	return out
}

// Sum is the grand total across all rows.
func (g GroupedTotals) Sum() float64 {
	var total float64
	for _, row := range g.Rows {
		total += row.CO2Tons
	}
	return total
}

// FuelMix sums co2 per (fuel_type, zone), keys ascending.
func FuelMix(ds Dataset) GroupedTotals {
	return groupedTotals(ds, FieldFuelType, FieldZone)
}

// MonthlyTrend sums co2 per (month, zone), months ascending.
func MonthlyTrend(ds Dataset) GroupedTotals {
	return groupedTotals(ds, FieldMonth, FieldZone)
}

func groupedTotals(ds Dataset, primary, secondary string) GroupedTotals {
	out := GroupedTotals{Dimensions: []string{primary, secondary}, Rows: []GroupedRow{}}
	groups := GroupAndAggregate(ds.View(), []string{primary, secondary}, FieldCO2Tons, "sum", "label_asc")
	for _, g := range groups {
		for _, sub := range g.SubGroups {
			out.Rows = append(out.Rows, GroupedRow{
				Keys:    []string{g.Key, sub.Key},
				CO2Tons: sub.Value,
			})
		}
	}
	return out
}

// ============================================================================
// ZONE SNAPSHOT
// ============================================================================

// ZoneCard summarizes one zone.
type ZoneCard struct {
	Zone       Zone      `json:"zone"`
	CO2Tons    float64   `json:"co2"`
	Intensity  NullFloat `json:"intensity"`
	Compliance float64   `json:"compliance"`
	Alerts     int       `json:"alerts"`
}

// ZoneSnapshot builds one card per zone present in the slice, zones in
// display order. Intensity is the mean over records that have one; a zone
// where no record has one reports it as undefined.
func ZoneSnapshot(ds Dataset, threshold float64) []ZoneCard {
	cards := []ZoneCard{}
	for _, z := range Zones {
		zone := ds.where(func(r EmissionRecord) bool { return r.Zone == z })
		if zone.IsEmpty() {
			continue
		}
		view := zone.View()

		var sum float64
		var n int
		for _, r := range zone.records {
			if r.EmissionIntensity.Valid {
				sum += r.EmissionIntensity.Float64
				n++
			}
		}
		intensity := NullFloat{}
		if n > 0 {
			intensity = Some(Round(sum/float64(n), 2))
		}

		cards = append(cards, ZoneCard{
			Zone:       z,
			CO2Tons:    Round(SumMeasure(view, FieldCO2Tons), 2),
			Intensity:  intensity,
			Compliance: Round(complianceRate(view), 1),
			Alerts:     countAbove(zone, threshold),
		})
	}
	return cards
}
