package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/spektr-org/portemission/engine"
)

// ============================================================================
// HEADERS — Column-name normalization for ingested tables
// ============================================================================
// Uploaded files arrive with the dashboard's spellings (CO2_tons, IMO_Number,
// Dwell_Time_hr) or hand-typed variants. Every header is snake-cased, then
// looked up in a small alias table, then checked against Emission().
// ============================================================================

// aliases maps snake-cased variants to canonical keys.
var aliases = map[string]string{
	"imo":              engine.FieldIMONumber,
	"imo_no":           engine.FieldIMONumber,
	"vessel":           engine.FieldVesselName,
	"name":             engine.FieldVesselName,
	"fuel":             engine.FieldFuelType,
	"co2":              engine.FieldCO2Tons,
	"co2_(t)":          engine.FieldCO2Tons,
	"sox":              engine.FieldSOxTons,
	"sox_(t)":          engine.FieldSOxTons,
	"nox":              engine.FieldNOxTons,
	"nox_(t)":          engine.FieldNOxTons,
	"speed":            engine.FieldSpeedKnots,
	"speed_(knots)":    engine.FieldSpeedKnots,
	"dwell":            engine.FieldDwellTimeHr,
	"dwell_time":       engine.FieldDwellTimeHr,
	"dwell_time_hours": engine.FieldDwellTimeHr,
	"dwell_time_(hr)":  engine.FieldDwellTimeHr,
	"compliance":       engine.FieldComplianceFlag,
	"compliant":        engine.FieldComplianceFlag,
	"latitude":         engine.FieldLat,
	"longitude":        engine.FieldLon,
	"intensity":        engine.FieldEmissionIntensity,
}

// NormalizeHeader maps a raw column header to its canonical key.
// Unknown headers come back snake-cased so callers can report them.
func NormalizeHeader(header string) string {
	key := toSnakeCase(strings.TrimSpace(header))
	if canonical, ok := aliases[key]; ok {
		return canonical
	}
	return key
}

// ValidateHeaders normalizes headers and checks them against Emission().
// Returns the canonical keys in input order. Unknown, duplicate or missing
// columns fail with engine.ErrInvalidArgument. Derived columns are accepted
// and recomputed on ingestion.
func ValidateHeaders(headers []string) ([]string, error) {
	sch := Emission()
	known := make(map[string]bool)
	for _, k := range append(sch.DimensionKeys(), sch.MeasureKeys()...) {
		known[k] = true
	}

	keys := make([]string, len(headers))
	seen := make(map[string]bool, len(headers))
	var unknown []string
	for i, h := range headers {
		key := NormalizeHeader(h)
		switch {
		case !known[key]:
			unknown = append(unknown, h)
		case seen[key]:
			return nil, fmt.Errorf("%w: column %q appears twice", engine.ErrInvalidArgument, key)
		}
		seen[key] = true
		keys[i] = key
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: unknown columns %s", engine.ErrInvalidArgument, strings.Join(unknown, ", "))
	}

	var missing []string
	for _, k := range sch.Required() {
		if !seen[k] {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", engine.ErrInvalidArgument, strings.Join(missing, ", "))
	}
	return keys, nil
}

// ============================================================================
// VALUE PARSING
// ============================================================================

// IsNull reports whether a raw cell means "no value".
func IsNull(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "null", "NULL", "N/A", "n/a", "NaN", "nan":
		return true
	}
	return false
}

// ParseFloat parses a numeric cell, tolerating thousands separators.
func ParseFloat(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", engine.ErrInvalidArgument, s)
	}
	return v, nil
}

// ParseInt parses a whole-number cell. Fractions are rejected, not truncated.
func ParseInt(s string) (int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", engine.ErrInvalidArgument, s)
	}
	return v, nil
}

// ParseBool accepts true/false, yes/no and 1/0 in any case.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q is not a boolean", engine.ErrInvalidArgument, s)
}

var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006/01/02",
}

// ParseDate parses a date cell in UTC. Day-first and month-first slash
// formats are ambiguous and rejected.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not a date", engine.ErrInvalidArgument, s)
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// toSnakeCase converts "Column Name" or "columnName" → "column_name".
func toSnakeCase(s string) string {
	var result strings.Builder
	var prev rune
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			result.WriteRune('_')
		}
		result.WriteRune(r)
		prev = r
	}

	s = strings.ToLower(result.String())
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.Trim(s, "_")
}
