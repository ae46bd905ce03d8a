package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// FILTER SET
// ============================================================================

func TestNewFilterSetRejectsStartAfterEnd(t *testing.T) {
	_, err := NewFilterSet(day0.AddDate(0, 0, 1), day0, nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	f, err := NewFilterSet(day0, day0, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, day0, f.Start())
	assert.Equal(t, day0, f.End())
}

func TestNewFilterSetKeepsCallerCalendarDay(t *testing.T) {
	sgt := time.FixedZone("SGT", 8*60*60)
	start := time.Date(2025, 3, 2, 0, 0, 0, 0, sgt)
	end := time.Date(2025, 3, 2, 23, 30, 0, 0, sgt)

	f, err := NewFilterSet(start, end, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, day0.AddDate(0, 0, 1), f.Start())
	assert.Equal(t, day0.AddDate(0, 0, 1), f.End())

	ds := mustDataset(t,
		rec(ZoneECA, FuelHFO, 10, day0),
		rec(ZoneECA, FuelHFO, 11, day0.AddDate(0, 0, 1).Add(6*time.Hour)),
	)
	got := Apply(ds, f.Resolve(DefaultFilters(ds)))
	require.Equal(t, 1, got.Len())
	assert.Equal(t, 11.0, got.At(0).CO2Tons)
}

func TestDefaultFilters(t *testing.T) {
	ds := mustDataset(t, fleet(60)...)
	f := DefaultFilters(ds)

	assert.Equal(t, day0, f.Start())
	assert.Equal(t, day0.AddDate(0, 0, 29), f.End())
	assert.Equal(t, []Zone{ZoneECA, ZoneNonECA}, f.Zones())
	assert.Equal(t, []FuelType{FuelHFO, FuelHybrid, FuelLNG, FuelMGO}, f.FuelTypes())
	assert.Len(t, f.VesselTypes(), len(fixtureVesselTypes))

	assert.Equal(t, ds.Len(), Apply(ds, f).Len(), "default filters keep everything")
}

func TestApplyIncludesWholeEndDay(t *testing.T) {
	late := rec(ZoneECA, FuelHFO, 10, day0.Add(23*time.Hour+59*time.Minute))
	next := rec(ZoneECA, FuelHFO, 11, day0.AddDate(0, 0, 1))
	ds := mustDataset(t, late, next)

	f, err := NewFilterSet(day0, day0, []Zone{ZoneECA}, []string{"Container"}, []FuelType{FuelHFO})
	require.NoError(t, err)

	out := Apply(ds, f)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, 10.0, out.At(0).CO2Tons)
}

func TestApplyIsIdempotent(t *testing.T) {
	ds := mustDataset(t, fleet(90)...)
	f, err := NewFilterSet(day0.AddDate(0, 0, 3), day0.AddDate(0, 0, 20),
		[]Zone{ZoneECA}, []string{"Tanker", "Container"}, []FuelType{FuelHFO, FuelLNG})
	require.NoError(t, err)

	once := Apply(ds, f)
	twice := Apply(once, f)
	assert.Equal(t, once.Records(), twice.Records())
}

func TestApplyStaysInsideRequestedSets(t *testing.T) {
	ds := mustDataset(t, fleet(90)...)
	f := DefaultFilters(ds).
		WithZones(ZoneNonECA).
		WithVesselTypes("Offshore").
		WithFuelTypes(FuelMGO, FuelHybrid)

	out := Apply(ds, f)
	assert.LessOrEqual(t, out.Len(), ds.Len())
	for _, r := range out.Records() {
		assert.Equal(t, ZoneNonECA, r.Zone)
		assert.Equal(t, "Offshore", r.VesselType)
		assert.Contains(t, []FuelType{FuelMGO, FuelHybrid}, r.FuelType)
	}
}

func TestApplyPreservesOrderAndSource(t *testing.T) {
	ds := mustDataset(t, fleet(30)...)
	before := ds.Records()

	out := Apply(ds, DefaultFilters(ds).WithZones(ZoneECA))
	for i := 1; i < out.Len(); i++ {
		assert.False(t, out.At(i).Date.Before(out.At(i-1).Date))
	}
	assert.Equal(t, before, ds.Records(), "source untouched")
}

func TestEmptySetMatchesNothingUntilResolved(t *testing.T) {
	ds := mustDataset(t, fleet(30)...)
	defaults := DefaultFilters(ds)
	f := defaults.WithZones()

	assert.Equal(t, 0, Apply(ds, f).Len())
	assert.Equal(t, ds.Len(), Apply(ds, f.Resolve(defaults)).Len())

	var zero FilterSet
	assert.Equal(t, ds.Len(), Apply(ds, zero.Resolve(defaults)).Len())
}

func TestWithDerivationsDoNotMutate(t *testing.T) {
	ds := mustDataset(t, fleet(30)...)
	f := DefaultFilters(ds)
	_ = f.WithZones(ZoneECA)
	assert.Len(t, f.Zones(), 2)

	narrowed, err := f.WithDateRange(day0, day0.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.Equal(t, day0.AddDate(0, 0, 29), f.End())
	assert.Equal(t, day0.AddDate(0, 0, 5), narrowed.End())

	_, err = f.WithDateRange(day0.AddDate(0, 0, 5), day0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
