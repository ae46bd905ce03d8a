package engine

import (
	"fmt"
	"strconv"
	"time"
)

// ============================================================================
// TABLE BUILDER — Produces TableData from datasets and grouped results
// ============================================================================

// recordColumns are the columns of a record table, in display order.
var recordColumns = []Column{
	{Key: FieldDate, Label: "Date", Type: "date", Align: "left"},
	{Key: FieldIMONumber, Label: "IMO Number", Type: "text", Align: "left"},
	{Key: FieldVesselName, Label: "Vessel Name", Type: "text", Align: "left"},
	{Key: FieldVesselType, Label: "Vessel Type", Type: "text", Align: "left"},
	{Key: FieldZone, Label: "Zone", Type: "text", Align: "left"},
	{Key: FieldFuelType, Label: "Fuel Type", Type: "text", Align: "left"},
	{Key: FieldCO2Tons, Label: "CO2 Tons", Type: "number", Align: "right"},
	{Key: FieldSOxTons, Label: "SOx Tons", Type: "number", Align: "right"},
	{Key: FieldNOxTons, Label: "NOx Tons", Type: "number", Align: "right"},
	{Key: FieldSpeedKnots, Label: "Speed (kn)", Type: "number", Align: "right"},
	{Key: FieldDwellTimeHr, Label: "Dwell Time (hr)", Type: "number", Align: "right"},
	{Key: FieldComplianceFlag, Label: "Compliant", Type: "bool", Align: "center"},
}

// BuildRecordTable produces one row per record, in dataset order.
func BuildRecordTable(ds Dataset, title string) *TableData {
	if ds.IsEmpty() {
		return &TableData{
			Title:   title,
			Columns: []Column{},
			Rows:    [][]string{},
		}
	}

	rows := make([][]string, 0, ds.Len())
	var total float64
	for _, r := range ds.records {
		rows = append(rows, []string{
			r.Date.Format(time.DateOnly),
			strconv.Itoa(r.IMONumber),
			r.VesselName,
			r.VesselType,
			string(r.Zone),
			string(r.FuelType),
			fmt.Sprintf("%.2f", r.CO2Tons),
			fmt.Sprintf("%.2f", r.SOxTons),
			fmt.Sprintf("%.2f", r.NOxTons),
			fmt.Sprintf("%.2f", r.SpeedKnots),
			fmt.Sprintf("%.1f", r.DwellTimeHr),
			strconv.FormatBool(r.ComplianceFlag),
		})
		total += r.CO2Tons
	}

	columns := make([]Column, len(recordColumns))
	copy(columns, recordColumns)
	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    rows,
		Summary: &TableSummary{
			Label: fmt.Sprintf("Total (%d records)", ds.Len()),
			Values: map[string]string{
				FieldCO2Tons: FormatTons(total),
			},
		},
	}
}

// BuildGroupTable produces one row per group with its subgroups flattened
// into "group / subgroup" rows when present.
func BuildGroupTable(groups []Group, title, groupLabel string) *TableData {
	if len(groups) == 0 {
		return &TableData{
			Title:   title,
			Columns: []Column{},
			Rows:    [][]string{},
		}
	}
	if groupLabel == "" {
		groupLabel = "Group"
	}

	columns := []Column{
		{Key: "group", Label: groupLabel, Type: "text", Align: "left"},
		{Key: "value", Label: "CO2 (t)", Type: "number", Align: "right"},
	}

	rows := make([][]string, 0, len(groups))
	var totalValue float64
	for _, g := range groups {
		if len(g.SubGroups) == 0 {
			rows = append(rows, []string{g.Label, fmt.Sprintf("%.2f", g.Value)})
			totalValue += g.Value
			continue
		}
		for _, sg := range g.SubGroups {
			rows = append(rows, []string{g.Label + " / " + sg.Label, fmt.Sprintf("%.2f", sg.Value)})
			totalValue += sg.Value
		}
	}

	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    rows,
		Summary: &TableSummary{
			Label:  "Total",
			Values: map[string]string{"value": FormatTons(totalValue)},
		},
	}
}

// BuildZoneTable renders zone cards.
func BuildZoneTable(cards []ZoneCard, title string) *TableData {
	columns := []Column{
		{Key: FieldZone, Label: "Zone", Type: "text", Align: "left"},
		{Key: "co2", Label: "CO2 (t)", Type: "number", Align: "right"},
		{Key: "intensity", Label: "Intensity (t/hr)", Type: "number", Align: "right"},
		{Key: "compliance", Label: "Compliance %", Type: "number", Align: "right"},
		{Key: "alerts", Label: "Alerts", Type: "number", Align: "center"},
	}
	rows := make([][]string, 0, len(cards))
	for _, c := range cards {
		rows = append(rows, []string{
			string(c.Zone),
			fmt.Sprintf("%.2f", c.CO2Tons),
			c.Intensity.String(),
			fmt.Sprintf("%.1f", c.Compliance),
			strconv.Itoa(c.Alerts),
		})
	}
	return &TableData{Title: title, Columns: columns, Rows: rows}
}

// BuildCorrelationTable renders the matrix with "n/a" for undefined cells.
func BuildCorrelationTable(m CorrelationMatrix, title string) *TableData {
	columns := []Column{{Key: "metric", Label: "Metric", Type: "text", Align: "left"}}
	for _, metric := range m.Metrics {
		columns = append(columns, Column{Key: metric, Label: LabelForDimension(metric), Type: "number", Align: "right"})
	}
	rows := make([][]string, 0, len(m.Metrics))
	for i, metric := range m.Metrics {
		row := []string{LabelForDimension(metric)}
		for j := range m.Metrics {
			row = append(row, m.Cells[i][j].String())
		}
		rows = append(rows, row)
	}
	return &TableData{Title: title, Columns: columns, Rows: rows}
}
