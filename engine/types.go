package engine

// ============================================================================
// ENGINE TYPES — Query contract and render-ready output
// ============================================================================
// Computation outputs (KpiSet, PivotedSeries, FlowGraph, ...) live next to
// the functions that build them. This file holds the dispatcher contract and
// the chart/table/text shapes every view renders into.
// ============================================================================

// View names accepted by Run.
const (
	ViewKPIs        = "kpis"
	ViewTimeSeries  = "timeseries"
	ViewFuelMix     = "fuelmix"
	ViewMonthly     = "monthly"
	ViewZones       = "zones"
	ViewBenchmark   = "benchmark"
	ViewCorrelation = "correlation"
	ViewRegression  = "regression"
	ViewAnomalies   = "anomalies"
	ViewAlerts      = "alerts"
	ViewCompliance  = "compliance"
	ViewFlow        = "flow"
	ViewSummary     = "summary"
	ViewInsight     = "insight"
	ViewRecords     = "records"
)

// Views lists every view Run can dispatch, in menu order.
var Views = []string{
	ViewKPIs, ViewTimeSeries, ViewFuelMix, ViewMonthly, ViewZones, ViewBenchmark,
	ViewCorrelation, ViewRegression, ViewAnomalies, ViewAlerts, ViewCompliance,
	ViewFlow, ViewSummary, ViewInsight, ViewRecords,
}

// ============================================================================
// QUERY — Contract between the caller and Run
// ============================================================================

// Query names one view over one filtered slice.
// Filters are resolved against DefaultFilters(ds): any empty selection set or
// a zero date range means "no restriction".
type Query struct {
	View    string    `json:"view"`
	Filters FilterSet `json:"-"`
	Title   string    `json:"title,omitempty"`
}

// ============================================================================
// RESULT — Render-ready output
// ============================================================================

// Result is the engine's render-ready output.
type Result struct {
	Success bool   `json:"success"`
	View    string `json:"view"`
	Type    string `json:"type"` // "chart", "table", "text"
	Reply   string `json:"reply"`
	Title   string `json:"title"`
	Records int    `json:"records"`

	ChartConfig *ChartConfig `json:"chartConfig,omitempty"`
	TableData   *TableData   `json:"tableData,omitempty"`
	// Data holds the structured output of the view (KpiSet, FlowGraph, ...).
	Data interface{} `json:"data,omitempty"`

	Errors []string `json:"errors,omitempty"`
}

// ============================================================================
// GROUP — Intermediate computation result
// ============================================================================

// Group represents a grouped/aggregated result.
// Builders convert these into ChartConfig, TableData, or GroupedTotals.
type Group struct {
	Key       string     `json:"key"`
	Label     string     `json:"label"`
	Value     float64    `json:"value"`
	Count     int        `json:"count"`
	SubGroups []Group    `json:"subGroups,omitempty"`
	View      RecordView `json:"-"` // Sub-view for records in this group (zero-copy)
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType  string        `json:"chartType"` // "area", "line", "bar", "stacked_bar", "donut", "sankey", "heatmap", "scatter"
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Zone palette shared by every chart.
const (
	ColorECA    = "#E03C31"
	ColorNonECA = "#2980B9"
	ColorDelta  = "#27AE60"
)

// ZoneColor returns the palette color for a zone.
func ZoneColor(z Zone) string {
	if z == ZoneECA {
		return ColorECA
	}
	return ColorNonECA
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string        `json:"title"`
	Columns []Column      `json:"columns"`
	Rows    [][]string    `json:"rows"`
	Summary *TableSummary `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number", "date", "bool"
	Align string `json:"align"` // "left", "center", "right"
}

// TableSummary provides totals for a table footer.
type TableSummary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// ============================================================================
// TEXT TYPES
// ============================================================================

// TextData is structured data for single-value answers (type="text").
type TextData struct {
	Value    string  `json:"value"`
	RawValue float64 `json:"rawValue"`
	Unit     string  `json:"unit"`
	Period   string  `json:"period"`
	Count    int     `json:"count"`
}
