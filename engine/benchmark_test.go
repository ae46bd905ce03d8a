package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComparativeProfileRelabelsCurrentMonth(t *testing.T) {
	ds := mustDataset(t,
		rec(ZoneECA, FuelHFO, 30, day0.AddDate(0, -1, 0)), // previous month, excluded
		rec(ZoneECA, FuelHFO, 20, day0),
		rec(ZoneNonECA, FuelMGO, 10, day0.AddDate(0, 0, 1)),
		rec(ZoneECA, FuelLNG, 5, day0.AddDate(0, 0, 2)),
	)
	rows := ComparativeProfile(ds)
	require.Len(t, rows, 4)

	assert.Equal(t, BenchmarkRow{Port: DefaultPrimary, Zone: ZoneECA, CO2Tons: 25, Month: day0, Derived: false}, rows[0])
	assert.Equal(t, BenchmarkRow{Port: DefaultPeerECA, Zone: ZoneECA, CO2Tons: 25, Month: day0, Derived: true}, rows[1])
	assert.Equal(t, DefaultPrimary, rows[2].Port)
	assert.Equal(t, ZoneNonECA, rows[2].Zone)
	assert.Equal(t, 10.0, rows[2].CO2Tons)
	assert.Equal(t, DefaultPeerNonECA, rows[3].Port)
	assert.True(t, rows[3].Derived)
}

func TestComparativeProfileCustomPorts(t *testing.T) {
	rows := ComparativeProfile(scenario(t), WithPorts("Rotterdam", "Antwerp", "Hamburg"))
	ports := map[string]bool{}
	for _, r := range rows {
		ports[r.Port] = true
	}
	assert.Equal(t, map[string]bool{"Rotterdam": true, "Antwerp": true, "Hamburg": true}, ports)
}

func TestComparativeProfileEmpty(t *testing.T) {
	assert.Empty(t, ComparativeProfile(Dataset{}))
}
