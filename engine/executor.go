package engine

import (
	"errors"
	"fmt"
	"log"
)

// ============================================================================
// EXECUTOR — View dispatcher
// ============================================================================
// Entry point: Run(query, ds, opts...)
//
// Pipeline:
//   1. Validate options (threshold bounds, sigma, top-N)
//   2. Resolve the query's FilterSet against DefaultFilters(ds)
//   3. Apply → filtered Dataset (copy)
//   4. Short-circuit an empty slice into a text Result
//   5. Dispatch to the view's computation and builder
//   6. Return Result
//
// No I/O. The only side effect is a log line per run.
// ============================================================================

// defaultTitles is the title used when Query.Title is empty.
var defaultTitles = map[string]string{
	ViewKPIs:        "Key Performance Indicators",
	ViewTimeSeries:  "Daily CO2 by Zone",
	ViewFuelMix:     "Fuel Mix by Zone",
	ViewMonthly:     "Monthly CO2 Trend",
	ViewZones:       "Zone Snapshot",
	ViewBenchmark:   "Comparative Port Profile",
	ViewCorrelation: "Metric Correlation",
	ViewRegression:  "Speed vs CO2",
	ViewAnomalies:   "Statistical Anomalies",
	ViewAlerts:      "Threshold Alerts",
	ViewCompliance:  "Compliance Summary",
	ViewFlow:        "Fuel to Zone Emission Flow",
	ViewSummary:     "Emission Summary",
	ViewInsight:     "Quick Insight",
	ViewRecords:     "Emission Records",
}

// NoDataReply is the reply for an empty filtered slice.
const NoDataReply = "No records match the selected filters. Try broadening the date range or selections."

// Run computes one view over the filtered dataset and returns a render-ready
// Result. An empty filtered slice is a successful text Result, not an error.
//
// Options:
//   - WithThreshold(t) — alert threshold in [5, 30] (alerts, zones, compliance)
//   - WithSigma(k) — anomaly multiplier (anomalies)
//   - WithTopN(n) — top emitters (summary)
//   - WithTotalNode() — terminal flow layer (flow)
//   - WithPorts(primary, peerECA, peerNonECA) — benchmark labels
//   - WithGeneratedAt(t) — brief timestamp (summary)
func Run(query Query, ds Dataset, opts ...Option) (*Result, error) {
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if _, ok := defaultTitles[query.View]; !ok {
		return nil, fmt.Errorf("%w: unknown view %q", ErrInvalidArgument, query.View)
	}

	title := query.Title
	if title == "" {
		title = defaultTitles[query.View]
	}

	filters := query.Filters.Resolve(DefaultFilters(ds))
	filtered := Apply(ds, filters)

	if filtered.IsEmpty() {
		return &Result{
			Success: true,
			View:    query.View,
			Type:    "text",
			Title:   title,
			Reply:   NoDataReply,
		}, nil
	}

	log.Printf("🔧 portemission: view=%s, %d of %d records after filtering", query.View, filtered.Len(), ds.Len())

	result := &Result{
		Success: true,
		View:    query.View,
		Title:   title,
		Records: filtered.Len(),
	}

	switch query.View {
	case ViewKPIs:
		kpis := ComputeKPIs(filtered)
		result.Type = "text"
		result.Data = kpis
		result.Reply = fmt.Sprintf("%s CO2 across %d calls; %.1f%% in ECA, %.1f%% compliant, %d alerts.",
			FormatTons(kpis.TotalCO2), filtered.Len(), kpis.ECAPercent, kpis.ComplianceRate, kpis.Alerts)

	case ViewTimeSeries:
		series := TimeSeries(filtered)
		result.Type = "chart"
		result.Data = series
		result.ChartConfig = BuildTrendChart(series, title)

	case ViewFuelMix:
		mix := FuelMix(filtered)
		result.Type = "chart"
		result.Data = mix
		result.ChartConfig = BuildDonutChart(mix.Totals(), title)
		result.TableData = BuildGroupTable(mix.groups(), title, LabelForDimension(FieldFuelType))

	case ViewMonthly:
		trend := MonthlyTrend(filtered)
		result.Type = "chart"
		result.Data = trend
		result.ChartConfig = BuildChart(trend.groups(), "stacked_bar", title, FieldMonth)

	case ViewZones:
		cards := ZoneSnapshot(filtered, cfg.Threshold)
		result.Type = "table"
		result.Data = cards
		result.TableData = BuildZoneTable(cards, title)

	case ViewBenchmark:
		rows := ComparativeProfile(filtered, opts...)
		result.Type = "chart"
		result.Data = rows
		result.ChartConfig = BuildChart(benchmarkGroups(rows), "stacked_bar", title, DimensionPort)
		result.Reply = fmt.Sprintf("Peers %s and %s are %s's own records relabeled by zone, not independent measurements.",
			cfg.PeerECA, cfg.PeerNonECA, cfg.PrimaryPort)

	case ViewCorrelation:
		m := Correlation(filtered)
		result.Type = "table"
		result.Data = m
		result.TableData = BuildCorrelationTable(m, title)

	case ViewRegression:
		fit, err := Regression(filtered)
		if errors.Is(err, ErrUndefinedMetric) {
			result.Type = "text"
			result.Reply = "Regression is undefined for this slice: " + err.Error()
			result.Errors = []string{err.Error()}
			return result, nil
		}
		if err != nil {
			return nil, err
		}
		result.Type = "chart"
		result.Data = fit
		result.ChartConfig = BuildRegressionChart(fit, title)
		result.Reply = fmt.Sprintf("co2 ≈ %.2f + %.2f × speed (r=%s, n=%d)", fit.Intercept, fit.Slope, fit.R, fit.N)

	case ViewAnomalies:
		anomalies, err := Anomalies(filtered, cfg.Sigma)
		if err != nil {
			return nil, err
		}
		result.Type = "table"
		result.Data = anomalies
		result.TableData = BuildRecordTable(anomalies, title)
		result.Reply = fmt.Sprintf("%d calls above mean + %.1fσ.", anomalies.Len(), cfg.Sigma)

	case ViewAlerts:
		alerts, err := Alerts(filtered, cfg.Threshold)
		if err != nil {
			return nil, err
		}
		result.Type = "table"
		result.Data = alerts
		result.TableData = BuildRecordTable(alerts, title)
		result.Reply = fmt.Sprintf("%d calls above %.1f t CO2.", alerts.Len(), cfg.Threshold)

	case ViewCompliance:
		report, err := ComplianceSummary(filtered, cfg.Threshold)
		if err != nil {
			return nil, err
		}
		result.Type = "table"
		result.Data = report
		result.TableData = BuildRecordTable(report.Alerts, title)
		result.Reply = fmt.Sprintf("Compliance rate %.1f%%, %d alerts above %.1f t.", report.Rate, report.Alerts.Len(), cfg.Threshold)

	case ViewFlow:
		var flowOpts []Option
		if cfg.TotalNode {
			flowOpts = append(flowOpts, WithTotalNode())
		}
		graph := FlowDecomposition(filtered, flowOpts...)
		result.Type = "chart"
		result.Data = graph
		result.ChartConfig = BuildFlowChart(graph, title)
		if graph.IsEmpty() {
			result.Type = "text"
			result.Reply = "Nothing to draw: no fuel/zone pair carries positive emissions."
			return result, nil
		}

	case ViewSummary:
		summary := BuildSummary(filtered, cfg.TopN)
		result.Type = "text"
		result.Data = summary
		result.Reply = BuildBrief(summary, cfg.GeneratedAt)

	case ViewInsight:
		insight := QuickInsight(filtered)
		result.Type = "text"
		result.Reply = insight
		result.Data = &TextData{Value: insight, Period: DerivePeriod(filtered.View()), Count: filtered.Len()}

	case ViewRecords:
		result.Type = "table"
		result.Data = filtered
		result.TableData = BuildRecordTable(filtered, title)
	}

	if result.Type == "chart" && result.ChartConfig == nil {
		result.Type = "text"
		result.Reply = "Not enough data to generate a chart."
	}
	return result, nil
}
