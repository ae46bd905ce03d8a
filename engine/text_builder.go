package engine

import (
	"fmt"
	"strings"
	"time"
)

// ============================================================================
// TEXT BUILDER — period labels, week-over-week insight, executive brief
// ============================================================================

// DerivePeriod builds a human-readable day range from a view.
func DerivePeriod(view RecordView) string {
	if view.Len() == 0 {
		return "No data"
	}
	// ISO dates order lexically.
	first, last := "", ""
	for i := 0; i < view.Len(); i++ {
		d := view.Dimension(i, FieldDate)
		if d == "" {
			continue
		}
		if first == "" || d < first {
			first = d
		}
		if d > last {
			last = d
		}
	}
	switch {
	case first == "":
		return "All time"
	case first == last:
		return first
	}
	return fmt.Sprintf("%s – %s", first, last)
}

// ============================================================================
// QUICK INSIGHT — week-over-week narrative
// ============================================================================

// Insight thresholds, in percent week-over-week.
const (
	insightECARise      = 8.0
	insightNonECAFall   = -5.0
	insightEmptyMessage = "No telemetry available for the selected slice."
)

// QuickInsight compares the trailing 7 days with the 7 before them, per zone,
// and returns a one-line narrative. An ECA rise wins over a Non-ECA fall.
func QuickInsight(ds Dataset) string {
	if ds.IsEmpty() {
		return insightEmptyMessage
	}
	latest, previous := weekWindows(ds)
	ecaChange := percentChange(zoneTotal(latest, ZoneECA), zoneTotal(previous, ZoneECA))
	nonECAChange := percentChange(zoneTotal(latest, ZoneNonECA), zoneTotal(previous, ZoneNonECA))

	switch {
	case ecaChange > insightECARise:
		return fmt.Sprintf("⚠ ECA CO₂ rose %.0f%% over the last week, driven by intensified bulk carrier calls.", ecaChange)
	case nonECAChange < insightNonECAFall:
		return fmt.Sprintf("✅ Non-ECA CO₂ fell %.0f%% as slow-steaming policies improved port-side dwell efficiency.", -nonECAChange)
	}
	return "ℹ Emissions remain steady week-on-week with no material deviations detected."
}

// ============================================================================
// EXECUTIVE BRIEF — plain-text rendering of a Summary
// ============================================================================

// BriefTitle heads every brief.
const BriefTitle = "Port Emission Intelligence – Executive Brief"

// BuildBrief renders a summary as a plain-text brief stamped with generatedAt.
func BuildBrief(s Summary, generatedAt time.Time) string {
	var b strings.Builder
	b.WriteString(BriefTitle + "\n")
	b.WriteString(strings.Repeat("=", 43) + "\n")
	fmt.Fprintf(&b, "ECA Total Emissions: %.2f t\n", s.ECATotal)
	fmt.Fprintf(&b, "Non-ECA Total Emissions: %.2f t\n", s.NonECATotal)
	fmt.Fprintf(&b, "Compliance Rate: %.1f%%\n", s.Compliance)
	b.WriteString("\nTop Emitters:\n")
	if len(s.TopEmitters) == 0 {
		b.WriteString("- none\n")
	}
	for _, e := range s.TopEmitters {
		fmt.Fprintf(&b, "- %s (%d) – %.2f t CO₂ – %s\n", e.VesselName, e.IMONumber, e.CO2Tons, e.Zone)
	}
	fmt.Fprintf(&b, "\nGenerated: %s", generatedAt.UTC().Format("2006-01-02 15:04 UTC"))
	return b.String()
}
