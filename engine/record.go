package engine

import (
	"encoding/json"
	"fmt"
	"time"
)

// ============================================================================
// RECORD MODEL — One vessel-call emission event
// ============================================================================
// EmissionRecord is a flat value type: no pointers, maps or slices.
// Copying a record is a deep copy, which is what keeps filtered datasets
// from aliasing their source.
// ============================================================================

// Zone is the emission-control category of a vessel call.
type Zone string

const (
	ZoneECA    Zone = "ECA"
	ZoneNonECA Zone = "Non-ECA"
)

// Zones is the fixed zone domain, in display order.
var Zones = []Zone{ZoneECA, ZoneNonECA}

// Valid reports whether z is in the zone domain.
func (z Zone) Valid() bool {
	return z == ZoneECA || z == ZoneNonECA
}

// FuelType is the fuel burned during the call.
type FuelType string

const (
	FuelHFO    FuelType = "HFO"
	FuelMGO    FuelType = "MGO"
	FuelLNG    FuelType = "LNG"
	FuelHybrid FuelType = "Hybrid"
)

// FuelTypes is the fixed fuel domain.
var FuelTypes = []FuelType{FuelHFO, FuelMGO, FuelLNG, FuelHybrid}

// Valid reports whether f is in the fuel domain.
func (f FuelType) Valid() bool {
	switch f {
	case FuelHFO, FuelMGO, FuelLNG, FuelHybrid:
		return true
	}
	return false
}

// DefaultAlertThreshold is the CO2 tonnage above which a call raises an alert.
const DefaultAlertThreshold = 15.0

// Canonical record field names. Charts, tables and exports bind to these.
const (
	FieldIMONumber         = "imo_number"
	FieldVesselName        = "vessel_name"
	FieldZone              = "zone"
	FieldFuelType          = "fuel_type"
	FieldVesselType        = "vessel_type"
	FieldCO2Tons           = "co2_tons"
	FieldSOxTons           = "sox_tons"
	FieldNOxTons           = "nox_tons"
	FieldSpeedKnots        = "speed_knots"
	FieldDwellTimeHr       = "dwell_time_hr"
	FieldComplianceFlag    = "compliance_flag"
	FieldDate              = "date"
	FieldLat               = "lat"
	FieldLon               = "lon"
	FieldEmissionIntensity = "emission_intensity"
	FieldMonth             = "month"
)

// Fields lists every record field in schema order.
var Fields = []string{
	FieldIMONumber, FieldVesselName, FieldZone, FieldFuelType, FieldVesselType,
	FieldCO2Tons, FieldSOxTons, FieldNOxTons, FieldSpeedKnots, FieldDwellTimeHr,
	FieldComplianceFlag, FieldDate, FieldLat, FieldLon, FieldEmissionIntensity, FieldMonth,
}

// EmissionRecord is a single vessel-call emission observation.
type EmissionRecord struct {
	IMONumber         int       `json:"imo_number"`
	VesselName        string    `json:"vessel_name"`
	Zone              Zone      `json:"zone"`
	FuelType          FuelType  `json:"fuel_type"`
	VesselType        string    `json:"vessel_type"`
	CO2Tons           float64   `json:"co2_tons"`
	SOxTons           float64   `json:"sox_tons"`
	NOxTons           float64   `json:"nox_tons"`
	SpeedKnots        float64   `json:"speed_knots"`
	DwellTimeHr       float64   `json:"dwell_time_hr"`
	ComplianceFlag    bool      `json:"compliance_flag"`
	Date              time.Time `json:"date"`
	Lat               float64   `json:"lat"`
	Lon               float64   `json:"lon"`
	EmissionIntensity NullFloat `json:"emission_intensity"`
	Month             time.Time `json:"month"`
}

// IMO numbers are seven digits.
const (
	MinIMO = 1000000
	MaxIMO = 9999999
)

// derive fills the derived fields from the measured ones.
func (r *EmissionRecord) derive() {
	if r.DwellTimeHr != 0 {
		r.EmissionIntensity = NullFloat{Float64: r.CO2Tons / r.DwellTimeHr, Valid: true}
	} else {
		r.EmissionIntensity = NullFloat{}
	}
	r.Month = FirstOfMonth(r.Date)
}

func (r EmissionRecord) validate() error {
	if r.IMONumber < MinIMO || r.IMONumber > MaxIMO {
		return fmt.Errorf("%w: imo %d is not a 7-digit number", ErrInvalidArgument, r.IMONumber)
	}
	if !r.Zone.Valid() {
		return fmt.Errorf("%w: zone %q (imo %d)", ErrInvalidArgument, r.Zone, r.IMONumber)
	}
	if !r.FuelType.Valid() {
		return fmt.Errorf("%w: fuel type %q (imo %d)", ErrInvalidArgument, r.FuelType, r.IMONumber)
	}
	if r.Date.IsZero() {
		return fmt.Errorf("%w: missing date (imo %d)", ErrInvalidArgument, r.IMONumber)
	}
	if r.CO2Tons < 0 || r.SOxTons < 0 || r.NOxTons < 0 || r.SpeedKnots < 0 || r.DwellTimeHr < 0 {
		return fmt.Errorf("%w: negative measurement (imo %d)", ErrInvalidArgument, r.IMONumber)
	}
	return nil
}

// ============================================================================
// NULLFLOAT — a float that may have no value
// ============================================================================

// NullFloat is a float64 that may be undefined. Undefined values are never
// coerced to 0; they marshal to JSON null.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Some wraps a defined value.
func Some(v float64) NullFloat { return NullFloat{Float64: v, Valid: true} }

func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = NullFloat{Float64: v, Valid: true}
	return nil
}

// String renders the value or "n/a".
func (n NullFloat) String() string {
	if !n.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", n.Float64)
}

// ============================================================================
// DATE HELPERS
// ============================================================================

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CalendarDay keeps the day t names in its own location and returns that
// day at midnight UTC. 2025-03-02 00:00 +08:00 is 2025-03-02, not the 1st.
func CalendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FirstOfMonth returns midnight UTC on the first day of t's month.
func FirstOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
