// Package synth generates deterministic synthetic vessel-call emission data.
//
// One seeded PCG stream drives every draw, so identical
// (rowCount, seed, anchor, profile) inputs give bit-identical datasets.
// There is no package-level random state.
package synth

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/spektr-org/portemission/engine"
)

// Stream constants for the two PCG sources. Names draw from their own
// stream so the measurement draws do not depend on the faker's internals.
const (
	measureStream = 0x9e3779b97f4a7c15
	nameStream    = 0xbf58476d1ce4e5b9
)

// Option configures Generate.
type Option func(*settings)

type settings struct {
	anchor  time.Time
	profile Profile
}

// WithAnchor sets the last day of the window. Default: today, 00:00 UTC.
func WithAnchor(t time.Time) Option {
	return func(s *settings) {
		s.anchor = t
	}
}

// WithProfile replaces the distribution profile.
func WithProfile(p Profile) Option {
	return func(s *settings) {
		s.profile = p
	}
}

// WithWindowDays overrides the trailing window length.
func WithWindowDays(days int) Option {
	return func(s *settings) {
		s.profile.WindowDays = days
	}
}

// Generate synthesizes rowCount records over the trailing window ending at the
// anchor day. Fails with engine.ErrInvalidArgument when rowCount <= 0 or the
// profile is unusable.
func Generate(rowCount int, seed uint64, opts ...Option) (engine.Dataset, error) {
	s := settings{anchor: time.Now(), profile: DefaultProfile()}
	for _, opt := range opts {
		opt(&s)
	}
	if rowCount <= 0 {
		return engine.Dataset{}, fmt.Errorf("%w: row count %d must be positive", engine.ErrInvalidArgument, rowCount)
	}
	p := s.profile
	if err := p.Validate(); err != nil {
		return engine.Dataset{}, err
	}

	src := rand.NewPCG(seed, measureStream)
	rng := rand.New(src)
	normal := func(mu, sigma float64) distuv.Normal {
		return distuv.Normal{Mu: mu, Sigma: sigma, Src: src}
	}

	end := engine.Day(s.anchor)
	start := end.AddDate(0, 0, -(p.WindowDays - 1))

	// Each field is drawn as a column, in a fixed order.
	dates := make([]time.Time, rowCount)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, rng.IntN(p.WindowDays))
	}
	zones := drawCategorical(engine.Zones, p.ZoneWeights, src, rowCount)
	fuels := drawCategorical(engine.FuelTypes, p.FuelWeights, src, rowCount)
	vesselTypes := make([]string, rowCount)
	for i := range vesselTypes {
		vesselTypes[i] = p.VesselTypes[rng.IntN(len(p.VesselTypes))]
	}

	baseCO2 := draw(normal(p.CO2.Mean, p.CO2.Std), rowCount)
	ecaMultiplier := draw(normal(p.ECAMultiplier.Mean, p.ECAMultiplier.Std), rowCount)
	co2 := make([]float64, rowCount)
	for i := range co2 {
		v := baseCO2[i]
		if zones[i] == engine.ZoneECA {
			v *= ecaMultiplier[i]
		}
		co2[i] = p.CO2.clip(v)
	}

	sox := drawClipped(normal(p.SOx.Mean, p.SOx.Std), p.SOx, rowCount)
	nox := drawClipped(normal(p.NOx.Mean, p.NOx.Std), p.NOx, rowCount)
	speed := drawClipped(normal(p.Speed.Mean, p.Speed.Std), p.Speed, rowCount)
	dwell := drawClipped(normal(p.Dwell.Mean, p.Dwell.Std), p.Dwell, rowCount)

	// The flip is intentional: compliance is not a pure function of co2.
	compliance := make([]bool, rowCount)
	for i := range compliance {
		compliance[i] = co2[i] < p.ComplianceThreshold
		if rng.Float64() < p.FlipRate {
			compliance[i] = !compliance[i]
		}
	}

	lat := draw(normal(p.CenterLat, p.LatJitter), rowCount)
	lon := draw(normal(p.CenterLon, p.LonJitter), rowCount)

	faker := gofakeit.NewFaker(rand.NewPCG(seed, nameStream), false)

	records := make([]engine.EmissionRecord, rowCount)
	for i := range records {
		records[i] = engine.EmissionRecord{
			IMONumber:      p.IMOMin + rng.IntN(p.IMOMax-p.IMOMin),
			VesselName:     fmt.Sprintf("MV_%s_%03d", strings.ReplaceAll(faker.Color(), " ", ""), i),
			Zone:           zones[i],
			FuelType:       fuels[i],
			VesselType:     vesselTypes[i],
			CO2Tons:        round(co2[i], 2),
			SOxTons:        round(sox[i], 2),
			NOxTons:        round(nox[i], 2),
			SpeedKnots:     round(speed[i], 2),
			DwellTimeHr:    round(dwell[i], 1),
			ComplianceFlag: compliance[i],
			Date:           dates[i],
			Lat:            round(lat[i], 5),
			Lon:            round(lon[i], 5),
		}
	}
	return engine.NewDataset(records)
}

// ============================================================================
// DRAW HELPERS
// ============================================================================

func draw(d distuv.Normal, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = d.Rand()
	}
	return out
}

func drawClipped(d distuv.Normal, c Clipped, n int) []float64 {
	out := draw(d, n)
	for i, v := range out {
		out[i] = c.clip(v)
	}
	return out
}

func drawCategorical[T any](values []T, weights []float64, src rand.Source, n int) []T {
	cat := distuv.NewCategorical(weights, src)
	out := make([]T, n)
	for i := range out {
		out[i] = values[int(cat.Rand())]
	}
	return out
}

// round keeps the stored precision of each field; half away from zero.
func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
