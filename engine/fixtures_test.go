package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// ============================================================================
// TEST FIXTURES
// ============================================================================

var day0 = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

var fixtureVesselTypes = []string{"Bulk Carrier", "Container", "Tanker", "Ro-Ro", "Offshore"}

// rec builds a minimal valid record.
func rec(zone Zone, fuel FuelType, co2 float64, date time.Time) EmissionRecord {
	return EmissionRecord{
		IMONumber:      9100000 + int(co2*10),
		VesselName:     "MV_Test",
		Zone:           zone,
		FuelType:       fuel,
		VesselType:     "Container",
		CO2Tons:        co2,
		SOxTons:        1,
		NOxTons:        2,
		SpeedKnots:     12,
		DwellTimeHr:    10,
		ComplianceFlag: co2 < DefaultAlertThreshold,
		Date:           date,
		Lat:            1.265,
		Lon:            103.82,
	}
}

// fleet builds n varied records spread over 30 days.
func fleet(n int) []EmissionRecord {
	out := make([]EmissionRecord, n)
	for i := 0; i < n; i++ {
		zone := ZoneNonECA
		if i%3 == 0 {
			zone = ZoneECA
		}
		co2 := 5 + float64((i*7)%19)
		out[i] = EmissionRecord{
			IMONumber:      9100000 + i%40,
			VesselName:     "MV_Fleet",
			Zone:           zone,
			FuelType:       FuelTypes[i%len(FuelTypes)],
			VesselType:     fixtureVesselTypes[i%len(fixtureVesselTypes)],
			CO2Tons:        co2,
			SOxTons:        0.1 + float64(i%23)/10,
			NOxTons:        0.5 + float64((i*5)%31)/10,
			SpeedKnots:     7 + float64((i*3)%13),
			DwellTimeHr:    8 + float64(i%10)*5,
			ComplianceFlag: (co2 < DefaultAlertThreshold) != (i%9 == 0),
			Date:           day0.AddDate(0, 0, (i*11)%30).Add(time.Duration(i%24) * time.Hour),
			Lat:            1.265,
			Lon:            103.82,
		}
	}
	return out
}

func mustDataset(t *testing.T, records ...EmissionRecord) Dataset {
	t.Helper()
	ds, err := NewDataset(records)
	require.NoError(t, err)
	return ds
}

// scenario is the three-record dataset: (ECA, HFO, 20), (Non-ECA, MGO, 10), (ECA, LNG, 5).
func scenario(t *testing.T) Dataset {
	return mustDataset(t,
		rec(ZoneECA, FuelHFO, 20, day0),
		rec(ZoneNonECA, FuelMGO, 10, day0.AddDate(0, 0, 1)),
		rec(ZoneECA, FuelLNG, 5, day0.AddDate(0, 0, 2)),
	)
}
