package engine

import "time"

// ============================================================================
// SUMMARY — structured payload for briefs and exports
// ============================================================================
// The engine stops at this struct. Byte formats (CSV, XLSX, the text brief)
// are built from it by the formatters.
// ============================================================================

// Emitter is one row of the top-emitters list.
type Emitter struct {
	IMONumber      int       `json:"imo_number"`
	VesselName     string    `json:"vessel_name"`
	Zone           Zone      `json:"zone"`
	FuelType       FuelType  `json:"fuel_type"`
	CO2Tons        float64   `json:"co2_tons"`
	ComplianceFlag bool      `json:"compliance_flag"`
	Date           time.Time `json:"date"`
}

// Summary is the per-zone totals, compliance rate and top emitters of a slice.
type Summary struct {
	ECATotal    float64   `json:"eca_total"`
	NonECATotal float64   `json:"non_eca_total"`
	Compliance  float64   `json:"compliance"`
	Records     int       `json:"records"`
	TopEmitters []Emitter `json:"top_emitters"`
}

// BuildSummary assembles the summary. topN <= 0 uses DefaultTopN.
// Top emitters are co2 descending, ties in dataset order.
func BuildSummary(ds Dataset, topN int) Summary {
	if topN <= 0 {
		topN = DefaultTopN
	}
	s := Summary{
		ECATotal:    Round(zoneTotal(ds, ZoneECA), 2),
		NonECATotal: Round(zoneTotal(ds, ZoneNonECA), 2),
		Records:     ds.Len(),
		TopEmitters: []Emitter{},
	}
	if ds.IsEmpty() {
		return s
	}
	s.Compliance = Round(complianceRate(ds.View()), 1)

	for _, r := range ds.sortedByCO2Desc() {
		if len(s.TopEmitters) == topN {
			break
		}
		s.TopEmitters = append(s.TopEmitters, Emitter{
			IMONumber:      r.IMONumber,
			VesselName:     r.VesselName,
			Zone:           r.Zone,
			FuelType:       r.FuelType,
			CO2Tons:        r.CO2Tons,
			ComplianceFlag: r.ComplianceFlag,
			Date:           r.Date,
		})
	}
	return s
}
