package engine

import "fmt"

// ============================================================================
// CHART BUILDER — Produces ChartConfig from computed views
// ============================================================================
// Zone series always use the zone palette so ECA is the same red in every
// chart. Other series cycle through defaultColors.
// ============================================================================

// Default color palette for non-zone series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// BuildChart produces a ChartConfig from aggregated groups. Groups with
// subgroups become one series per subgroup key.
func BuildChart(groups []Group, chartType, title, xAxis string) *ChartConfig {
	if len(groups) == 0 {
		return nil
	}
	if chartType == "" {
		chartType = "bar"
	}

	config := &ChartConfig{
		ChartType:  chartType,
		Title:      title,
		XAxis:      LabelForDimension(xAxis),
		YAxis:      "CO2 (t)",
		ShowLegend: true,
		ShowGrid:   chartType != "donut",
	}

	if hasSubGroups(groups) {
		config.Series = buildMultiSeries(groups)
	} else {
		config.Series = buildSingleSeries(groups, title)
	}

	config.Colors = make([]string, len(config.Series))
	for i, s := range config.Series {
		config.Colors[i] = s.Color
	}
	return config
}

// BuildTrendChart renders the daily pivot as an area chart with the
// ECA − Non-ECA differential as a third series.
func BuildTrendChart(series PivotedSeries, title string) *ChartConfig {
	if len(series.Rows) == 0 {
		return nil
	}
	out := make([]ChartSeries, 0, len(series.Columns)+1)
	for _, z := range series.Columns {
		s := ChartSeries{Name: string(z), Color: ZoneColor(z)}
		for _, row := range series.Rows {
			s.Data = append(s.Data, ChartPoint{Label: row.Date.Format("2006-01-02"), Value: RoundTo2(row.Values[z])})
		}
		out = append(out, s)
	}
	delta := ChartSeries{Name: "Δ ECA vs Non-ECA", Color: ColorDelta}
	for _, row := range series.Rows {
		delta.Data = append(delta.Data, ChartPoint{Label: row.Date.Format("2006-01-02"), Value: RoundTo2(row.Delta)})
	}
	out = append(out, delta)

	colors := make([]string, len(out))
	for i, s := range out {
		colors[i] = s.Color
	}
	return &ChartConfig{
		ChartType:  "area",
		Title:      title,
		XAxis:      "Date",
		YAxis:      "CO2 (t)",
		Series:     out,
		Colors:     colors,
		ShowLegend: true,
		ShowGrid:   true,
	}
}

// BuildDonutChart renders first-key totals (e.g. fuel share) as a donut.
func BuildDonutChart(totals []GroupedRow, title string) *ChartConfig {
	if len(totals) == 0 {
		return nil
	}
	groups := make([]Group, 0, len(totals))
	for _, row := range totals {
		groups = append(groups, Group{Key: row.Keys[0], Label: row.Keys[0], Value: row.CO2Tons})
	}
	return BuildChart(groups, "donut", title, "")
}

// BuildRegressionChart renders the observed points with the fitted line
// over them.
func BuildRegressionChart(fit RegressionFit, title string) *ChartConfig {
	if len(fit.Line) == 0 {
		return nil
	}
	colors := []string{defaultColors[1], defaultColors[0]}
	return &ChartConfig{
		ChartType: "scatter",
		Title:     title,
		XAxis:     LabelForDimension(FieldSpeedKnots),
		YAxis:     LabelForDimension(FieldCO2Tons),
		Series: []ChartSeries{
			{Name: "Observed", Data: fit.Observed, Color: colors[0]},
			{Name: fmt.Sprintf("OLS fit (r=%s)", fit.R), Data: fit.Line, Color: colors[1]},
		},
		Colors:     colors,
		ShowLegend: true,
		ShowGrid:   true,
	}
}

// BuildFlowChart renders flow edges as "source → target" points of a sankey.
func BuildFlowChart(g FlowGraph, title string) *ChartConfig {
	if g.IsEmpty() {
		return nil
	}
	points := make([]ChartPoint, len(g.Values))
	for i := range g.Values {
		points[i] = ChartPoint{
			Label: g.Nodes[g.Sources[i]] + " → " + g.Nodes[g.Targets[i]],
			Value: g.Values[i],
		}
	}
	return &ChartConfig{
		ChartType:  "sankey",
		Title:      title,
		Series:     []ChartSeries{{Name: "CO2 (t)", Data: points, Color: defaultColors[0]}},
		Colors:     []string{defaultColors[0]},
		ShowLegend: false,
	}
}

// ============================================================================
// SERIES BUILDERS
// ============================================================================

func buildSingleSeries(groups []Group, seriesName string) []ChartSeries {
	if seriesName == "" {
		seriesName = "Value"
	}

	points := make([]ChartPoint, 0, len(groups))
	for _, g := range groups {
		points = append(points, ChartPoint{
			Label: g.Label,
			Value: RoundTo2(g.Value),
		})
	}

	return []ChartSeries{{
		Name:  seriesName,
		Data:  points,
		Color: defaultColors[0],
	}}
}

// buildMultiSeries emits one series per subgroup key, keys in first-seen
// order, zero-filling groups that lack a key.
func buildMultiSeries(groups []Group) []ChartSeries {
	var subKeys []string
	seen := make(map[string]bool)
	for _, g := range groups {
		for _, sg := range g.SubGroups {
			if !seen[sg.Key] {
				seen[sg.Key] = true
				subKeys = append(subKeys, sg.Key)
			}
		}
	}

	series := make([]ChartSeries, 0, len(subKeys))
	for i, key := range subKeys {
		s := ChartSeries{Name: key, Data: make([]ChartPoint, 0, len(groups)), Color: seriesColor(key, i)}
		for _, g := range groups {
			var v float64
			for _, sg := range g.SubGroups {
				if sg.Key == key {
					v = sg.Value
				}
			}
			s.Data = append(s.Data, ChartPoint{Label: g.Label, Value: RoundTo2(v)})
		}
		series = append(series, s)
	}
	return series
}

func seriesColor(key string, i int) string {
	if z := Zone(key); z.Valid() {
		return ZoneColor(z)
	}
	return defaultColors[i%len(defaultColors)]
}

func hasSubGroups(groups []Group) bool {
	for _, g := range groups {
		if len(g.SubGroups) > 0 {
			return true
		}
	}
	return false
}

// groups converts two-key totals back into the Group shape builders take.
func (g GroupedTotals) groups() []Group {
	var out []Group
	index := make(map[string]int)
	for _, row := range g.Rows {
		if len(row.Keys) < 2 {
			continue
		}
		i, ok := index[row.Keys[0]]
		if !ok {
			i = len(out)
			index[row.Keys[0]] = i
			out = append(out, Group{Key: row.Keys[0], Label: row.Keys[0]})
		}
		out[i].Value += row.CO2Tons
		out[i].SubGroups = append(out[i].SubGroups, Group{Key: row.Keys[1], Label: row.Keys[1], Value: row.CO2Tons})
	}
	return out
}

// benchmarkGroups shapes benchmark rows as port → zone groups.
func benchmarkGroups(rows []BenchmarkRow) []Group {
	totals := GroupedTotals{Dimensions: []string{DimensionPort, FieldZone}}
	for _, r := range rows {
		totals.Rows = append(totals.Rows, GroupedRow{Keys: []string{r.Port, string(r.Zone)}, CO2Tons: r.CO2Tons})
	}
	return totals.groups()
}
