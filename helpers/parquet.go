package helpers

import (
	"fmt"
	"io"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/spektr-org/portemission/engine"
	"github.com/spektr-org/portemission/schema"
)

// ============================================================================
// PARQUET HELPER — Columnar snapshot files
// ============================================================================

// parquetRow is the on-disk layout. Derived fields are written for readers
// outside this module but recomputed on load.
type parquetRow struct {
	IMONumber         int64     `parquet:"imo_number"`
	VesselName        string    `parquet:"vessel_name,dict"`
	Zone              string    `parquet:"zone,dict"`
	FuelType          string    `parquet:"fuel_type,dict"`
	VesselType        string    `parquet:"vessel_type,dict"`
	CO2Tons           float64   `parquet:"co2_tons"`
	SOxTons           float64   `parquet:"sox_tons"`
	NOxTons           float64   `parquet:"nox_tons"`
	SpeedKnots        float64   `parquet:"speed_knots"`
	DwellTimeHr       float64   `parquet:"dwell_time_hr"`
	ComplianceFlag    bool      `parquet:"compliance_flag"`
	Date              time.Time `parquet:"date,timestamp"`
	Lat               float64   `parquet:"lat"`
	Lon               float64   `parquet:"lon"`
	EmissionIntensity *float64  `parquet:"emission_intensity,optional"`
}

// WriteParquet writes ds as a parquet file.
func WriteParquet(w io.Writer, ds engine.Dataset) error {
	records := ds.Records()
	rows := make([]parquetRow, len(records))
	for i, r := range records {
		rows[i] = parquetRow{
			IMONumber:      int64(r.IMONumber),
			VesselName:     r.VesselName,
			Zone:           string(r.Zone),
			FuelType:       string(r.FuelType),
			VesselType:     r.VesselType,
			CO2Tons:        r.CO2Tons,
			SOxTons:        r.SOxTons,
			NOxTons:        r.NOxTons,
			SpeedKnots:     r.SpeedKnots,
			DwellTimeHr:    r.DwellTimeHr,
			ComplianceFlag: r.ComplianceFlag,
			Date:           r.Date,
			Lat:            r.Lat,
			Lon:            r.Lon,
		}
		if r.EmissionIntensity.Valid {
			v := r.EmissionIntensity.Float64
			rows[i].EmissionIntensity = &v
		}
	}
	return parquet.Write(w, rows)
}

// ReadParquet loads a parquet file written by WriteParquet (or any file with
// the same column names), keeping rows allowed by allow. Column names go
// through the same validation as CSV headers.
func ReadParquet(r io.ReaderAt, size int64, allow AllowList) (engine.Dataset, error) {
	file, err := parquet.OpenFile(r, size)
	if err != nil {
		return engine.Dataset{}, fmt.Errorf("%w: open parquet: %v", engine.ErrInvalidArgument, err)
	}
	fields := file.Schema().Fields()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name()
	}
	if _, err := schema.ValidateHeaders(columns); err != nil {
		return engine.Dataset{}, fmt.Errorf("parquet columns: %w", err)
	}

	rows, err := parquet.Read[parquetRow](r, size)
	if err != nil {
		return engine.Dataset{}, fmt.Errorf("%w: read parquet: %v", engine.ErrInvalidArgument, err)
	}
	records := make([]engine.EmissionRecord, 0, len(rows))
	for _, row := range rows {
		if !allow.Permits(int(row.IMONumber)) {
			continue
		}
		records = append(records, engine.EmissionRecord{
			IMONumber:      int(row.IMONumber),
			VesselName:     row.VesselName,
			Zone:           engine.Zone(row.Zone),
			FuelType:       engine.FuelType(row.FuelType),
			VesselType:     row.VesselType,
			CO2Tons:        row.CO2Tons,
			SOxTons:        row.SOxTons,
			NOxTons:        row.NOxTons,
			SpeedKnots:     row.SpeedKnots,
			DwellTimeHr:    row.DwellTimeHr,
			ComplianceFlag: row.ComplianceFlag,
			Date:           row.Date,
			Lat:            row.Lat,
			Lon:            row.Lon,
		})
	}
	return engine.NewDataset(records)
}
