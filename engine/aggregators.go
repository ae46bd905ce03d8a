package engine

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ============================================================================
// AGGREGATORS — Grouping, Aggregation, and Sorting via RecordView
// ============================================================================
// All functions operate on RecordView — zero-copy access to the dataset.
// Grouping produces SubViews (index lists into parent view).
// ============================================================================

// GroupAndAggregate is the main entry point for the aggregation pipeline.
// Pipeline: group → aggregate → sort. aggregation is "sum" or "avg"; sortBy
// is "label_asc", "date_asc" or "" for first-appearance order.
func GroupAndAggregate(
	view RecordView,
	groupBy []string,
	measure string,
	aggregation string,
	sortBy string,
) []Group {
	if view.Len() == 0 {
		return nil
	}

	// 1. Group
	var groups []Group
	if len(groupBy) == 0 {
		groups = []Group{{
			Key:   "all",
			Label: "Total",
			View:  view,
		}}
	} else if len(groupBy) == 1 {
		groups = groupBySingle(view, groupBy[0])
	} else {
		groups = groupByMulti(view, groupBy)
	}

	// 2. Aggregate
	for i := range groups {
		aggregateGroup(&groups[i], measure, aggregation)
		for j := range groups[i].SubGroups {
			aggregateGroup(&groups[i].SubGroups[j], measure, aggregation)
		}
		SortGroups(groups[i].SubGroups, sortBy)
	}

	// 3. Sort
	SortGroups(groups, sortBy)

	return groups
}

// ============================================================================
// GROUPING
// ============================================================================

func groupBySingle(view RecordView, dimension string) []Group {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := view.Dimension(i, dimension)
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{
			Key:   key,
			Label: key,
			View:  newSubView(view, grouped[key]),
		})
	}
	return groups
}

func groupByMulti(view RecordView, dimensions []string) []Group {
	if len(dimensions) < 2 {
		return groupBySingle(view, dimensions[0])
	}

	primaryGroups := groupBySingle(view, dimensions[0])
	for i := range primaryGroups {
		primaryGroups[i].SubGroups = groupBySingle(primaryGroups[i].View, dimensions[1])
	}
	return primaryGroups
}

// ============================================================================
// AGGREGATION
// ============================================================================

func aggregateGroup(group *Group, measure string, aggregation string) {
	group.Count = group.View.Len()
	if group.Count == 0 {
		return
	}

	if aggregation == "avg" {
		group.Value = AvgMeasure(group.View, measure)
		return
	}
	group.Value = SumMeasure(group.View, measure)
}

// SumMeasure sums a named measure across a view.
func SumMeasure(view RecordView, measure string) float64 {
	var total float64
	for i := 0; i < view.Len(); i++ {
		total += view.Measure(i, measure)
	}
	return total
}

// AvgMeasure computes average of a named measure.
func AvgMeasure(view RecordView, measure string) float64 {
	n := view.Len()
	if n == 0 {
		return 0
	}
	return SumMeasure(view, measure) / float64(n)
}

// ============================================================================
// SORTING
// ============================================================================

// SortGroups orders groups by key for "label_asc"/"date_asc" and leaves them
// in first-appearance order otherwise.
func SortGroups(groups []Group, sortBy string) {
	switch sortBy {
	case "label_asc", "date_asc":
		// ISO dates and months sort lexically.
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	default:
		// preserve grouping order
	}
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// Round rounds v half away from zero to the given number of decimal places.
// Only the last step of a computation rounds; NaN and ±Inf pass through.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return Round(v, 2)
}

// labelWords overrides the title-casing of individual key words.
var labelWords = map[string]string{
	"imo": "IMO",
	"co2": "CO2",
	"sox": "SOx",
	"nox": "NOx",
	"eca": "ECA",
	"hr":  "(hr)",
}

// LabelForDimension returns a display label for a field key:
// "co2_tons" → "CO2 Tons", "dwell_time_hr" → "Dwell Time (hr)".
func LabelForDimension(dimension string) string {
	if dimension == "" {
		return ""
	}
	parts := strings.Split(dimension, "_")
	for i, p := range parts {
		if w, ok := labelWords[p]; ok {
			parts[i] = w
		} else if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

// FormatTons renders a tonnage with thousands separators: 1234.5 → "1,234.50 t".
func FormatTons(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	s := decimal.NewFromFloat(v).StringFixed(2)
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intStr, decStr, _ := strings.Cut(s, ".")
	out := groupThousands(intStr) + "." + decStr + " t"
	if negative {
		out = "-" + out
	}
	return out
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	return groupThousands(strconv.Itoa(n))
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var parts []string
	for len(digits) > 3 {
		parts = append([]string{digits[len(digits)-3:]}, parts...)
		digits = digits[:len(digits)-3]
	}
	parts = append([]string{digits}, parts...)
	return strings.Join(parts, ",")
}
