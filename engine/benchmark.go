package engine

import (
	"sort"
	"time"
)

// ============================================================================
// COMPARATIVE BENCHMARK — current month, primary port vs. relabeled peers
// ============================================================================
// Peer ports are NOT measured. They are the primary port's own current-month
// records relabeled by zone (ECA rows → one peer, Non-ECA rows → the other),
// read through a RelabelView. Rows carry Derived=true so a renderer can say so.
// ============================================================================

// BenchmarkRow is a (port, zone) co2 total.
type BenchmarkRow struct {
	Port    string    `json:"port"`
	Zone    Zone      `json:"zone"`
	CO2Tons float64   `json:"co2_tons"`
	Month   time.Time `json:"month"`
	Derived bool      `json:"derived"`
}

// ComparativeProfile sums co2 per (port, zone) over the latest month in the
// slice, sorted by co2 descending. Port labels come from WithPorts.
func ComparativeProfile(ds Dataset, opts ...Option) []BenchmarkRow {
	cfg := applyOptions(opts)
	rows := []BenchmarkRow{}
	if ds.IsEmpty() {
		return rows
	}

	var month time.Time
	for _, r := range ds.records {
		if r.Month.After(month) {
			month = r.Month
		}
	}
	current := ds.where(func(r EmissionRecord) bool { return r.Month.Equal(month) })
	view := current.View()

	primary := newRelabelView(view, DimensionPort, func(RecordView, int) string {
		return cfg.PrimaryPort
	})
	peers := newRelabelView(view, DimensionPort, func(parent RecordView, i int) string {
		if Zone(parent.Dimension(i, FieldZone)) == ZoneECA {
			return cfg.PeerECA
		}
		return cfg.PeerNonECA
	})

	groups := GroupAndAggregate(newConcatView(primary, peers),
		[]string{DimensionPort, FieldZone}, FieldCO2Tons, "sum", "")
	for _, g := range groups {
		for _, sub := range g.SubGroups {
			rows = append(rows, BenchmarkRow{
				Port:    g.Key,
				Zone:    Zone(sub.Key),
				CO2Tons: Round(sub.Value, 2),
				Month:   month,
				Derived: g.Key != cfg.PrimaryPort,
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CO2Tons > rows[j].CO2Tons })
	return rows
}
