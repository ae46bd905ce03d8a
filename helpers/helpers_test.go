package helpers

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/portemission/engine"
	"github.com/spektr-org/portemission/synth"
)

// Dashboard-style export with the original column spellings.
var uploadCSV = []byte(`IMO_Number,Vessel_Name,Zone,Fuel_Type,Vessel_Type,CO2_tons,SOx_tons,NOx_tons,Speed_knots,Dwell_Time_hr,Compliance_Flag,Date,Lat,Lon
9100001,MV_Teal_001,ECA,HFO,Tanker,18.25,1.1,2.2,12.5,40,False,2025-03-02,1.26,103.8
9100002,MV_Red_002,Non-ECA,LNG,Container,9.5,0.4,1.9,14,0,True,2025-03-01,1.27,103.9
9100003,MV_Blue_003,ECA,MGO,Ro-Ro,"1,002.5",0.9,1.2,8.5,60.5,yes,2025-03-03,1.25,103.7
`)

func sample(t *testing.T, n int) engine.Dataset {
	t.Helper()
	ds, err := synth.Generate(n, 11, synth.WithAnchor(time.Date(2025, 3, 30, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	return ds
}

// ============================================================================
// ALLOW-LIST
// ============================================================================

func TestAllowList(t *testing.T) {
	var empty AllowList
	assert.True(t, empty.Permits(1))

	a, err := ParseAllowList(" 9100002, 9100001 ,,")
	require.NoError(t, err)
	assert.Equal(t, []int{9100001, 9100002}, a.IMOs())
	assert.True(t, a.Permits(9100001))
	assert.False(t, a.Permits(9100003))

	_, err = ParseAllowList("91x")
	assert.ErrorIs(t, err, engine.ErrInvalidArgument)
}

func TestAllowListFilter(t *testing.T) {
	ds, err := ParseCSV(uploadCSV, nil)
	require.NoError(t, err)

	kept, err := NewAllowList(9100003).Filter(ds)
	require.NoError(t, err)
	require.Equal(t, 1, kept.Len())
	assert.Equal(t, 9100003, kept.At(0).IMONumber)

	same, err := AllowList{}.Filter(ds)
	require.NoError(t, err)
	assert.Equal(t, ds.Len(), same.Len())
}

// ============================================================================
// CSV INGESTION
// ============================================================================

func TestParseCSV(t *testing.T) {
	ds, err := ParseCSV(uploadCSV, nil)
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())

	first := ds.At(0)
	assert.Equal(t, 9100002, first.IMONumber, "sorted by date")
	assert.Equal(t, engine.ZoneNonECA, first.Zone)
	assert.True(t, first.ComplianceFlag)
	assert.False(t, first.EmissionIntensity.Valid, "zero dwell has no intensity")
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), first.Month)

	assert.InDelta(t, 18.25/40, ds.At(1).EmissionIntensity.Float64, 1e-12)
	assert.Equal(t, 1002.5, ds.At(2).CO2Tons)
}

func TestParseCSVAllowList(t *testing.T) {
	ds, err := ParseCSV(uploadCSV, NewAllowList(9100001, 9100003))
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
}

func TestParseCSVRejects(t *testing.T) {
	cases := map[string]string{
		"unknown column": "IMO_Number,Cargo\n1,2\n",
		"bad zone":       strings.Replace(string(uploadCSV), "Non-ECA", "Coastal", 1),
		"bad fuel":       strings.Replace(string(uploadCSV), ",LNG,", ",Coal,", 1),
		"bad number":     strings.Replace(string(uploadCSV), "9.5", "nine", 1),
		"bad date":       strings.Replace(string(uploadCSV), "2025-03-01", "01/03/2025", 1),
		"short row":      string(uploadCSV) + "9100004,MV_X\n",
		"fractional imo": strings.Replace(string(uploadCSV), "9100001,", "9100000.9,", 1),
		"short imo":      strings.Replace(string(uploadCSV), "9100001,", "42,", 1),
		"empty":          "",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCSV([]byte(data), nil)
			assert.ErrorIs(t, err, engine.ErrInvalidArgument)
		})
	}
}

// ============================================================================
// EXPORT ROUND-TRIPS
// ============================================================================

func TestCSVRoundTrip(t *testing.T) {
	ds := sample(t, 200)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ds))

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Equal(t, strings.Join(engine.Fields, ","), header)

	back, err := ParseCSV(buf.Bytes(), nil)
	require.NoError(t, err)
	assert.Equal(t, ds.Records(), back.Records())
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, engine.Dataset{}))
	assert.Equal(t, strings.Join(engine.Fields, ",")+"\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	ds := sample(t, 25)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, ds))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, ds.Len()+1)
	assert.Equal(t, engine.Fields, rows[0])
	assert.Equal(t, ds.At(0).VesselName, rows[1][1])
	assert.Equal(t, string(ds.At(0).Zone), rows[1][2])
}

func TestParquetRoundTrip(t *testing.T) {
	ds := sample(t, 120)

	var buf bytes.Buffer
	require.NoError(t, WriteParquet(&buf, ds))

	data := buf.Bytes()
	back, err := ReadParquet(bytes.NewReader(data), int64(len(data)), nil)
	require.NoError(t, err)
	assert.Equal(t, ds.Records(), back.Records())

	imo := ds.At(0).IMONumber
	only, err := ReadParquet(bytes.NewReader(data), int64(len(data)), NewAllowList(imo))
	require.NoError(t, err)
	require.GreaterOrEqual(t, only.Len(), 1)
	for _, r := range only.Records() {
		assert.Equal(t, imo, r.IMONumber)
	}
}

// partialRow lacks every measurement column and adds one the schema does not know.
type partialRow struct {
	IMONumber      int64     `parquet:"imo_number"`
	VesselName     string    `parquet:"vessel_name"`
	Zone           string    `parquet:"zone"`
	FuelType       string    `parquet:"fuel_type"`
	VesselType     string    `parquet:"vessel_type"`
	DwellTimeHr    float64   `parquet:"dwell_time_hr"`
	ComplianceFlag bool      `parquet:"compliance_flag"`
	Date           time.Time `parquet:"date,timestamp"`
	Lat            float64   `parquet:"lat"`
	Lon            float64   `parquet:"lon"`
	Bogus          string    `parquet:"bogus_column"`
}

func writePartial(t *testing.T, rows []partialRow) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, parquet.Write(&buf, rows))
	return buf.Bytes()
}

func TestReadParquetRejectsSchemaMismatch(t *testing.T) {
	data := writePartial(t, []partialRow{{
		IMONumber:  9100001,
		VesselName: "MV_Teal_001",
		Zone:       "ECA",
		FuelType:   "HFO",
		VesselType: "Tanker",
		Date:       time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
		Bogus:      "x",
	}})

	_, err := ReadParquet(bytes.NewReader(data), int64(len(data)), nil)
	require.ErrorIs(t, err, engine.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "bogus_column")
}

func TestReadParquetRejectsMissingColumns(t *testing.T) {
	type noCO2 struct {
		IMONumber      int64     `parquet:"imo_number"`
		VesselName     string    `parquet:"vessel_name"`
		Zone           string    `parquet:"zone"`
		FuelType       string    `parquet:"fuel_type"`
		VesselType     string    `parquet:"vessel_type"`
		SOxTons        float64   `parquet:"sox_tons"`
		NOxTons        float64   `parquet:"nox_tons"`
		SpeedKnots     float64   `parquet:"speed_knots"`
		DwellTimeHr    float64   `parquet:"dwell_time_hr"`
		ComplianceFlag bool      `parquet:"compliance_flag"`
		Date           time.Time `parquet:"date,timestamp"`
		Lat            float64   `parquet:"lat"`
		Lon            float64   `parquet:"lon"`
	}
	var buf bytes.Buffer
	require.NoError(t, parquet.Write(&buf, []noCO2{{
		IMONumber: 9100001, Zone: "ECA", FuelType: "HFO", VesselType: "Tanker",
		Date: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
	}}))
	data := buf.Bytes()

	_, err := ReadParquet(bytes.NewReader(data), int64(len(data)), nil)
	require.ErrorIs(t, err, engine.ErrInvalidArgument)
	assert.Contains(t, err.Error(), engine.FieldCO2Tons)
}
