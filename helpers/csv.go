package helpers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spektr-org/portemission/engine"
	"github.com/spektr-org/portemission/schema"
)

// ============================================================================
// CSV HELPER — Parses uploaded CSV into an engine.Dataset
// ============================================================================
// Consumer reads the bytes from wherever they live (upload, disk, bucket).
// Headers are normalized and checked against schema.Emission(); every row
// goes through engine.NewDataset, so enums and dates are validated once.
// Derived columns (month, emission_intensity) are ignored and recomputed.
// ============================================================================

// AllowList restricts ingestion to a set of IMO numbers. Empty allows all.
type AllowList map[int]struct{}

// NewAllowList builds an allow-list from IMO numbers.
func NewAllowList(imos ...int) AllowList {
	a := make(AllowList, len(imos))
	for _, imo := range imos {
		a[imo] = struct{}{}
	}
	return a
}

// ParseAllowList parses a comma-separated IMO list ("9100001, 9100002").
func ParseAllowList(s string) (AllowList, error) {
	a := AllowList{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		imo, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: allow-list entry %q is not an IMO number", engine.ErrInvalidArgument, part)
		}
		a[imo] = struct{}{}
	}
	return a, nil
}

// Permits reports whether imo passes the allow-list.
func (a AllowList) Permits(imo int) bool {
	if len(a) == 0 {
		return true
	}
	_, ok := a[imo]
	return ok
}

// IMOs returns the allowed IMO numbers, ascending.
func (a AllowList) IMOs() []int {
	out := make([]int, 0, len(a))
	for imo := range a {
		out = append(out, imo)
	}
	sort.Ints(out)
	return out
}

// Filter returns the records of ds that pass the allow-list.
func (a AllowList) Filter(ds engine.Dataset) (engine.Dataset, error) {
	if len(a) == 0 {
		return ds, nil
	}
	var kept []engine.EmissionRecord
	for _, r := range ds.Records() {
		if a.Permits(r.IMONumber) {
			kept = append(kept, r)
		}
	}
	return engine.NewDataset(kept)
}

// ParseCSV parses CSV bytes into a Dataset, keeping rows allowed by allow.
// Malformed rows fail the whole parse with their line number.
func ParseCSV(data []byte, allow AllowList) (engine.Dataset, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return engine.Dataset{}, fmt.Errorf("%w: failed to read CSV headers: %v", engine.ErrInvalidArgument, err)
	}
	keys, err := schema.ValidateHeaders(headers)
	if err != nil {
		return engine.Dataset{}, err
	}
	reader.FieldsPerRecord = len(keys)

	var records []engine.EmissionRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return engine.Dataset{}, fmt.Errorf("%w: line %d: %v", engine.ErrInvalidArgument, line, err)
		}
		r, err := recordFromRow(keys, row)
		if err != nil {
			return engine.Dataset{}, fmt.Errorf("line %d: %w", line, err)
		}
		if allow.Permits(r.IMONumber) {
			records = append(records, r)
		}
	}
	return engine.NewDataset(records)
}

// recordFromRow maps one row of canonical-keyed cells onto a record.
func recordFromRow(keys []string, row []string) (engine.EmissionRecord, error) {
	var r engine.EmissionRecord
	for i, key := range keys {
		cell := strings.TrimSpace(row[i])
		if err := setField(&r, key, cell); err != nil {
			return r, fmt.Errorf("column %s: %w", key, err)
		}
	}
	return r, nil
}

func setField(r *engine.EmissionRecord, key, cell string) error {
	var err error
	switch key {
	case engine.FieldIMONumber:
		r.IMONumber, err = schema.ParseInt(cell)
	case engine.FieldVesselName:
		r.VesselName = cell
	case engine.FieldZone:
		r.Zone = engine.Zone(cell)
	case engine.FieldFuelType:
		r.FuelType = engine.FuelType(cell)
	case engine.FieldVesselType:
		r.VesselType = cell
	case engine.FieldCO2Tons:
		r.CO2Tons, err = schema.ParseFloat(cell)
	case engine.FieldSOxTons:
		r.SOxTons, err = schema.ParseFloat(cell)
	case engine.FieldNOxTons:
		r.NOxTons, err = schema.ParseFloat(cell)
	case engine.FieldSpeedKnots:
		r.SpeedKnots, err = schema.ParseFloat(cell)
	case engine.FieldDwellTimeHr:
		r.DwellTimeHr, err = schema.ParseFloat(cell)
	case engine.FieldComplianceFlag:
		r.ComplianceFlag, err = schema.ParseBool(cell)
	case engine.FieldDate:
		r.Date, err = schema.ParseDate(cell)
	case engine.FieldLat:
		r.Lat, err = schema.ParseFloat(cell)
	case engine.FieldLon:
		r.Lon, err = schema.ParseFloat(cell)
	}
	return err
}
