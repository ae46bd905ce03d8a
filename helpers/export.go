package helpers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/portemission/engine"
)

// ============================================================================
// EXPORT — CSV and XLSX downloads of a record slice
// ============================================================================
// Both formats write one header row of canonical keys (engine.Fields order)
// followed by one row per record. Undefined emission_intensity is left blank.
// ============================================================================

// SheetName is the worksheet the XLSX export writes to.
const SheetName = "emissions"

// WriteCSV writes ds as CSV.
func WriteCSV(w io.Writer, ds engine.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(engine.Fields); err != nil {
		return err
	}
	for _, r := range ds.Records() {
		if err := cw.Write(csvRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes ds as a single-sheet workbook.
func WriteXLSX(w io.Writer, ds engine.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}
	for i, header := range engine.Fields {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetName, "A", "P", 14); err != nil {
		return err
	}

	for i, r := range ds.Records() {
		row := xlsxRow(r)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	return f.Write(w)
}

func csvRow(r engine.EmissionRecord) []string {
	intensity := ""
	if r.EmissionIntensity.Valid {
		intensity = formatFloat(r.EmissionIntensity.Float64)
	}
	return []string{
		strconv.Itoa(r.IMONumber),
		r.VesselName,
		string(r.Zone),
		string(r.FuelType),
		r.VesselType,
		formatFloat(r.CO2Tons),
		formatFloat(r.SOxTons),
		formatFloat(r.NOxTons),
		formatFloat(r.SpeedKnots),
		formatFloat(r.DwellTimeHr),
		strconv.FormatBool(r.ComplianceFlag),
		formatDate(r.Date),
		formatFloat(r.Lat),
		formatFloat(r.Lon),
		intensity,
		r.Month.Format("2006-01-02"),
	}
}

func xlsxRow(r engine.EmissionRecord) []interface{} {
	var intensity interface{}
	if r.EmissionIntensity.Valid {
		intensity = r.EmissionIntensity.Float64
	}
	return []interface{}{
		r.IMONumber,
		r.VesselName,
		string(r.Zone),
		string(r.FuelType),
		r.VesselType,
		r.CO2Tons,
		r.SOxTons,
		r.NOxTons,
		r.SpeedKnots,
		r.DwellTimeHr,
		r.ComplianceFlag,
		formatDate(r.Date),
		r.Lat,
		r.Lon,
		intensity,
		r.Month.Format("2006-01-02"),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatDate writes a bare day when the timestamp is midnight.
func formatDate(t time.Time) string {
	if t.Equal(engine.Day(t)) {
		return t.Format("2006-01-02")
	}
	return t.UTC().Format(time.RFC3339)
}
