package api

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spektr-org/portemission/engine"
)

// ============================================================================
// PARAMS — query strings and flags → FilterSet and engine options
// ============================================================================
// Shared by the HTTP handlers and the CLI so both surfaces accept the same
// spellings. Empty selections mean "no restriction"; a missing start or end
// falls back to the dataset's own bound, clamped so it never inverts the range.
// ============================================================================

// FilterParams is the raw, unvalidated filter selection.
type FilterParams struct {
	Start       string   // YYYY-MM-DD
	End         string   // YYYY-MM-DD
	Zones       []string
	VesselTypes []string
	FuelTypes   []string
}

// Build validates p against ds's default bounds.
func (p FilterParams) Build(ds engine.Dataset) (engine.FilterSet, error) {
	defaults := engine.DefaultFilters(ds)
	start, end := defaults.Start(), defaults.End()

	var err error
	if p.Start != "" {
		if start, err = parseDay("start", p.Start); err != nil {
			return engine.FilterSet{}, err
		}
	}
	if p.End != "" {
		if end, err = parseDay("end", p.End); err != nil {
			return engine.FilterSet{}, err
		}
	}
	// A defaulted bound is clamped to the explicit one.
	switch {
	case p.End == "" && end.Before(start):
		end = start
	case p.Start == "" && start.After(end):
		start = end
	}

	zones := make([]engine.Zone, 0, len(p.Zones))
	for _, z := range p.Zones {
		zone := engine.Zone(z)
		if !zone.Valid() {
			return engine.FilterSet{}, fmt.Errorf("%w: unknown zone %q", engine.ErrInvalidArgument, z)
		}
		zones = append(zones, zone)
	}
	fuels := make([]engine.FuelType, 0, len(p.FuelTypes))
	for _, f := range p.FuelTypes {
		fuel := engine.FuelType(f)
		if !fuel.Valid() {
			return engine.FilterSet{}, fmt.Errorf("%w: unknown fuel type %q", engine.ErrInvalidArgument, f)
		}
		fuels = append(fuels, fuel)
	}
	return engine.NewFilterSet(start, end, zones, p.VesselTypes, fuels)
}

func parseDay(name, s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %q is not YYYY-MM-DD", engine.ErrInvalidArgument, name, s)
	}
	return t, nil
}

// OptionParams are per-request overrides of the engine knobs. Empty strings
// keep the server's configured value.
type OptionParams struct {
	Threshold string
	Sigma     string
	Top       string
}

// Options converts the overrides into engine options.
func (p OptionParams) Options() ([]engine.Option, error) {
	var opts []engine.Option
	if p.Threshold != "" {
		v, err := strconv.ParseFloat(p.Threshold, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: threshold %q is not a number", engine.ErrInvalidArgument, p.Threshold)
		}
		opts = append(opts, engine.WithThreshold(v))
	}
	if p.Sigma != "" {
		v, err := strconv.ParseFloat(p.Sigma, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: sigma %q is not a number", engine.ErrInvalidArgument, p.Sigma)
		}
		opts = append(opts, engine.WithSigma(v))
	}
	if p.Top != "" {
		v, err := strconv.Atoi(p.Top)
		if err != nil {
			return nil, fmt.Errorf("%w: top %q is not an integer", engine.ErrInvalidArgument, p.Top)
		}
		opts = append(opts, engine.WithTopN(v))
	}
	return opts, nil
}
