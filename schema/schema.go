package schema

import (
	"github.com/spektr-org/portemission/engine"
	"github.com/spektr-org/portemission/synth"
)

// ============================================================================
// SCHEMA — Describes the shape of the emission record set
// ============================================================================
// Emission() is the canonical record schema. The API serves it, ingestion
// validates headers against it, and exports write columns in its order.
// ============================================================================

// Config describes the complete shape of a dataset.
type Config struct {
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`

	Dimensions []DimensionMeta `json:"dimensions"`
	Measures   []MeasureMeta   `json:"measures"`
}

// DimensionMeta describes a field used for grouping/filtering.
type DimensionMeta struct {
	Key             string   `json:"key"`
	DisplayName     string   `json:"displayName"`
	Description     string   `json:"description,omitempty"`
	SampleValues    []string `json:"sampleValues"`
	Groupable       bool     `json:"groupable"`
	Filterable      bool     `json:"filterable"`
	Closed          bool     `json:"closed,omitempty"` // SampleValues is the whole domain
	IsTemporal      bool     `json:"isTemporal,omitempty"`
	TemporalFormat  string   `json:"temporalFormat,omitempty"`
	CardinalityHint string   `json:"cardinalityHint,omitempty"` // "low", "medium", "high"
	DerivedFrom     string   `json:"derivedFrom,omitempty"`
}

// MeasureMeta describes a numeric field used for aggregation.
type MeasureMeta struct {
	Key                string   `json:"key"`
	DisplayName        string   `json:"displayName"`
	Description        string   `json:"description,omitempty"`
	Unit               string   `json:"unit,omitempty"` // "tons", "knots", "hours", "degrees", "tons/hour"
	Nullable           bool     `json:"nullable,omitempty"`
	Aggregations       []string `json:"aggregations,omitempty"`
	DefaultAggregation string   `json:"defaultAggregation,omitempty"`
	Format             string   `json:"format,omitempty"`
	DerivedFrom        string   `json:"derivedFrom,omitempty"`
}

// DefaultDimension creates a DimensionMeta with sensible defaults.
func DefaultDimension(key, displayName string, samples []string) DimensionMeta {
	return DimensionMeta{
		Key:          key,
		DisplayName:  displayName,
		SampleValues: samples,
		Groupable:    true,
		Filterable:   true,
	}
}

// DefaultMeasure creates a MeasureMeta with sensible defaults.
func DefaultMeasure(key, displayName, unit string) MeasureMeta {
	return MeasureMeta{
		Key:                key,
		DisplayName:        displayName,
		Unit:               unit,
		Aggregations:       []string{"sum", "avg", "min", "max"},
		DefaultAggregation: "sum",
		Format:             "#,##0.00",
	}
}

// Emission returns the canonical emission record schema.
func Emission() Config {
	zone := DefaultDimension(engine.FieldZone, "Zone", []string{string(engine.ZoneECA), string(engine.ZoneNonECA)})
	zone.Closed = true
	zone.CardinalityHint = "low"

	fuels := make([]string, len(engine.FuelTypes))
	for i, f := range engine.FuelTypes {
		fuels[i] = string(f)
	}
	fuel := DefaultDimension(engine.FieldFuelType, "Fuel Type", fuels)
	fuel.Closed = true
	fuel.CardinalityHint = "low"

	vesselType := DefaultDimension(engine.FieldVesselType, "Vessel Type", append([]string(nil), synth.DefaultVesselTypes...))
	vesselType.CardinalityHint = "low"

	imo := DefaultDimension(engine.FieldIMONumber, "IMO Number", nil)
	imo.Description = "Seven-digit vessel identifier"
	imo.CardinalityHint = "high"

	name := DefaultDimension(engine.FieldVesselName, "Vessel Name", nil)
	name.Groupable = false
	name.Filterable = false
	name.CardinalityHint = "high"

	compliance := DefaultDimension(engine.FieldComplianceFlag, "Compliance Flag", []string{"true", "false"})
	compliance.Closed = true
	compliance.Filterable = false
	compliance.CardinalityHint = "low"

	date := DefaultDimension(engine.FieldDate, "Date", nil)
	date.IsTemporal = true
	date.TemporalFormat = "yyyy-MM-dd"
	date.CardinalityHint = "medium"

	month := DefaultDimension(engine.FieldMonth, "Month", nil)
	month.IsTemporal = true
	month.TemporalFormat = "yyyy-MM"
	month.Filterable = false
	month.DerivedFrom = engine.FieldDate

	intensity := DefaultMeasure(engine.FieldEmissionIntensity, "Emission Intensity", "tons/hour")
	intensity.Description = "CO2 tons per dwell hour; null when dwell is zero"
	intensity.Nullable = true
	intensity.DefaultAggregation = "avg"
	intensity.DerivedFrom = engine.FieldCO2Tons

	speed := DefaultMeasure(engine.FieldSpeedKnots, "Speed (knots)", "knots")
	speed.DefaultAggregation = "avg"
	dwell := DefaultMeasure(engine.FieldDwellTimeHr, "Dwell Time (hr)", "hours")
	dwell.DefaultAggregation = "avg"
	lat := DefaultMeasure(engine.FieldLat, "Latitude", "degrees")
	lat.Aggregations = nil
	lat.DefaultAggregation = ""
	lat.Format = "0.00000"
	lon := DefaultMeasure(engine.FieldLon, "Longitude", "degrees")
	lon.Aggregations = nil
	lon.DefaultAggregation = ""
	lon.Format = "0.00000"

	return Config{
		Name:        "Port Emissions",
		Version:     "1.0",
		Description: "Vessel-call emission records for a single port",
		Dimensions:  []DimensionMeta{imo, name, zone, fuel, vesselType, compliance, date, month},
		Measures: []MeasureMeta{
			DefaultMeasure(engine.FieldCO2Tons, "CO2 (t)", "tons"),
			DefaultMeasure(engine.FieldSOxTons, "SOx (t)", "tons"),
			DefaultMeasure(engine.FieldNOxTons, "NOx (t)", "tons"),
			speed, dwell, lat, lon, intensity,
		},
	}
}

// GetDefaultMeasure returns the first measure's key, or co2_tons as fallback.
func (c Config) GetDefaultMeasure() string {
	if len(c.Measures) > 0 {
		return c.Measures[0].Key
	}
	return engine.FieldCO2Tons
}

// DimensionKeys returns all dimension keys.
func (c Config) DimensionKeys() []string {
	keys := make([]string, len(c.Dimensions))
	for i, d := range c.Dimensions {
		keys[i] = d.Key
	}
	return keys
}

// MeasureKeys returns all measure keys.
func (c Config) MeasureKeys() []string {
	keys := make([]string, len(c.Measures))
	for i, m := range c.Measures {
		keys[i] = m.Key
	}
	return keys
}

// Derived returns the keys computed from other fields rather than ingested.
func (c Config) Derived() []string {
	var keys []string
	for _, d := range c.Dimensions {
		if d.DerivedFrom != "" {
			keys = append(keys, d.Key)
		}
	}
	for _, m := range c.Measures {
		if m.DerivedFrom != "" {
			keys = append(keys, m.Key)
		}
	}
	return keys
}

// Required returns the keys an ingested table must carry.
func (c Config) Required() []string {
	derived := make(map[string]bool)
	for _, k := range c.Derived() {
		derived[k] = true
	}
	var keys []string
	for _, k := range append(c.DimensionKeys(), c.MeasureKeys()...) {
		if !derived[k] {
			keys = append(keys, k)
		}
	}
	return keys
}
