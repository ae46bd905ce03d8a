package engine

import (
	"fmt"
	"sort"
	"time"
)

// ============================================================================
// FILTERS — Immutable selection over date range, zone, vessel type, fuel
// ============================================================================
// A FilterSet is built per query and never mutated; With* methods return a new
// value. Apply is a single pass that checks every constraint per record and
// copies the survivors into a new Dataset.
// ============================================================================

// FilterSet selects records by inclusive day range and category membership.
type FilterSet struct {
	start       time.Time
	end         time.Time
	zones       map[Zone]bool
	vesselTypes map[string]bool
	fuelTypes   map[FuelType]bool
}

// NewFilterSet builds a FilterSet. start and end are truncated to the
// calendar day they name in their own location; the end day is included in
// full. Fails when start is after end.
func NewFilterSet(start, end time.Time, zones []Zone, vesselTypes []string, fuelTypes []FuelType) (FilterSet, error) {
	start, end = CalendarDay(start), CalendarDay(end)
	if start.After(end) {
		return FilterSet{}, fmt.Errorf("%w: filter start %s is after end %s",
			ErrInvalidArgument, start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	return FilterSet{
		start:       start,
		end:         end,
		zones:       toSet(zones),
		vesselTypes: toSet(vesselTypes),
		fuelTypes:   toSet(fuelTypes),
	}, nil
}

// DefaultFilters derives the widest FilterSet for a dataset: its own min/max
// day and the full observed zone, vessel-type and fuel-type sets.
func DefaultFilters(ds Dataset) FilterSet {
	lo, hi, _ := ds.DateRange()
	f := FilterSet{
		start:       Day(lo),
		end:         Day(hi),
		zones:       make(map[Zone]bool),
		vesselTypes: make(map[string]bool),
		fuelTypes:   make(map[FuelType]bool),
	}
	for _, r := range ds.records {
		f.zones[r.Zone] = true
		f.vesselTypes[r.VesselType] = true
		f.fuelTypes[r.FuelType] = true
	}
	return f
}

// Apply keeps the records inside the day range whose zone, vessel type and fuel
// type are members of the requested sets. An empty set matches nothing; use
// Resolve to treat empty selections as "no restriction".
func Apply(ds Dataset, f FilterSet) Dataset {
	endExclusive := f.end.AddDate(0, 0, 1)
	return ds.where(func(r EmissionRecord) bool {
		return !r.Date.Before(f.start) &&
			r.Date.Before(endExclusive) &&
			f.zones[r.Zone] &&
			f.vesselTypes[r.VesselType] &&
			f.fuelTypes[r.FuelType]
	})
}

// ============================================================================
// ACCESSORS — copies only
// ============================================================================

// Start returns the first included day.
func (f FilterSet) Start() time.Time { return f.start }

// End returns the last included day.
func (f FilterSet) End() time.Time { return f.end }

// Zones returns the selected zones, sorted.
func (f FilterSet) Zones() []Zone { return sortedKeys(f.zones) }

// VesselTypes returns the selected vessel types, sorted.
func (f FilterSet) VesselTypes() []string { return sortedKeys(f.vesselTypes) }

// FuelTypes returns the selected fuel types, sorted.
func (f FilterSet) FuelTypes() []FuelType { return sortedKeys(f.fuelTypes) }

// ============================================================================
// DERIVATION — each returns a new FilterSet
// ============================================================================

// WithDateRange returns a copy with a new day range.
func (f FilterSet) WithDateRange(start, end time.Time) (FilterSet, error) {
	return NewFilterSet(start, end, f.Zones(), f.VesselTypes(), f.FuelTypes())
}

// WithZones returns a copy selecting zones.
func (f FilterSet) WithZones(zones ...Zone) FilterSet {
	out := f
	out.zones = toSet(zones)
	return out
}

// WithVesselTypes returns a copy selecting vessel types.
func (f FilterSet) WithVesselTypes(types ...string) FilterSet {
	out := f
	out.vesselTypes = toSet(types)
	return out
}

// WithFuelTypes returns a copy selecting fuel types.
func (f FilterSet) WithFuelTypes(fuels ...FuelType) FilterSet {
	out := f
	out.fuelTypes = toSet(fuels)
	return out
}

// Resolve substitutes the defaults' set for every empty selection set.
// This is the caller-facing rule: an empty selection means "no restriction".
func (f FilterSet) Resolve(defaults FilterSet) FilterSet {
	out := f
	if len(out.zones) == 0 {
		out.zones = defaults.zones
	}
	if len(out.vesselTypes) == 0 {
		out.vesselTypes = defaults.vesselTypes
	}
	if len(out.fuelTypes) == 0 {
		out.fuelTypes = defaults.fuelTypes
	}
	if out.start.IsZero() && out.end.IsZero() {
		out.start, out.end = defaults.start, defaults.end
	}
	return out
}

// toSet builds a fresh lookup set. The map is never written after construction,
// so copies of a FilterSet may share it.
func toSet[T comparable](items []T) map[T]bool {
	set := make(map[T]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

func sortedKeys[T ~string](set map[T]bool) []T {
	out := make([]T, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
