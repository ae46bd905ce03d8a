package synth

import (
	"fmt"

	"github.com/spektr-org/portemission/engine"
)

// ============================================================================
// PROFILE — distribution constants for the synthetic fleet
// ============================================================================

// Clipped is a normal distribution clipped to [Min, Max].
type Clipped struct {
	Mean float64 `yaml:"mean" json:"mean"`
	Std  float64 `yaml:"std" json:"std"`
	Min  float64 `yaml:"min" json:"min"`
	Max  float64 `yaml:"max" json:"max"`
}

func (c Clipped) clip(v float64) float64 {
	if v < c.Min {
		return c.Min
	}
	if v > c.Max {
		return c.Max
	}
	return v
}

// Profile fixes every distribution the synthesizer draws from.
// Weight slices are aligned with engine.Zones and engine.FuelTypes.
type Profile struct {
	WindowDays  int       `yaml:"window_days" json:"window_days"`
	ZoneWeights []float64 `yaml:"zone_weights" json:"zone_weights"`
	FuelWeights []float64 `yaml:"fuel_weights" json:"fuel_weights"`
	VesselTypes []string  `yaml:"vessel_types" json:"vessel_types"`

	// CO2 is the base draw; ECA rows are multiplied by ECAMultiplier
	// (Mean/Std only) before clipping to CO2's bounds.
	CO2           Clipped `yaml:"co2" json:"co2"`
	ECAMultiplier Clipped `yaml:"eca_multiplier" json:"eca_multiplier"`
	SOx           Clipped `yaml:"sox" json:"sox"`
	NOx           Clipped `yaml:"nox" json:"nox"`
	Speed         Clipped `yaml:"speed" json:"speed"`
	Dwell         Clipped `yaml:"dwell" json:"dwell"`

	// ComplianceThreshold sets the naive rule co2 < threshold; FlipRate of
	// rows invert it.
	ComplianceThreshold float64 `yaml:"compliance_threshold" json:"compliance_threshold"`
	FlipRate            float64 `yaml:"flip_rate" json:"flip_rate"`

	CenterLat float64 `yaml:"center_lat" json:"center_lat"`
	CenterLon float64 `yaml:"center_lon" json:"center_lon"`
	LatJitter float64 `yaml:"lat_jitter" json:"lat_jitter"`
	LonJitter float64 `yaml:"lon_jitter" json:"lon_jitter"`

	// IMO numbers are drawn from [IMOMin, IMOMax).
	IMOMin int `yaml:"imo_min" json:"imo_min"`
	IMOMax int `yaml:"imo_max" json:"imo_max"`
}

// DefaultVesselTypes is the candidate vessel-type list.
var DefaultVesselTypes = []string{"Bulk Carrier", "Container", "Tanker", "Ro-Ro", "Offshore"}

// DefaultProfile returns the Singapore-port profile.
func DefaultProfile() Profile {
	return Profile{
		WindowDays:          30,
		ZoneWeights:         []float64{0.45, 0.55},
		FuelWeights:         []float64{0.42, 0.32, 0.18, 0.08},
		VesselTypes:         append([]string(nil), DefaultVesselTypes...),
		CO2:                 Clipped{Mean: 12.5, Std: 3.2, Min: 4.5, Max: 24},
		ECAMultiplier:       Clipped{Mean: 1.2, Std: 0.25},
		SOx:                 Clipped{Mean: 1.05, Std: 0.35, Min: 0.1, Max: 2.4},
		NOx:                 Clipped{Mean: 1.95, Std: 0.55, Min: 0.5, Max: 3.8},
		Speed:               Clipped{Mean: 13, Std: 2.8, Min: 7, Max: 20},
		Dwell:               Clipped{Mean: 48, Std: 18, Min: 8, Max: 110},
		ComplianceThreshold: engine.DefaultAlertThreshold,
		FlipRate:            0.12,
		CenterLat:           1.265,
		CenterLon:           103.82,
		LatJitter:           0.08,
		LonJitter:           0.12,
		IMOMin:              9100000,
		IMOMax:              9899999,
	}
}

// Validate checks the profile is usable.
func (p Profile) Validate() error {
	switch {
	case p.WindowDays <= 0:
		return fmt.Errorf("%w: window_days must be positive", engine.ErrInvalidArgument)
	case len(p.ZoneWeights) != len(engine.Zones):
		return fmt.Errorf("%w: need %d zone weights, have %d", engine.ErrInvalidArgument, len(engine.Zones), len(p.ZoneWeights))
	case len(p.FuelWeights) != len(engine.FuelTypes):
		return fmt.Errorf("%w: need %d fuel weights, have %d", engine.ErrInvalidArgument, len(engine.FuelTypes), len(p.FuelWeights))
	case len(p.VesselTypes) == 0:
		return fmt.Errorf("%w: no vessel types", engine.ErrInvalidArgument)
	case p.IMOMax <= p.IMOMin:
		return fmt.Errorf("%w: imo range [%d, %d) is empty", engine.ErrInvalidArgument, p.IMOMin, p.IMOMax)
	case p.FlipRate < 0 || p.FlipRate > 1:
		return fmt.Errorf("%w: flip_rate %.2f outside [0, 1]", engine.ErrInvalidArgument, p.FlipRate)
	}
	for _, c := range []Clipped{p.CO2, p.SOx, p.NOx, p.Speed, p.Dwell} {
		if c.Std < 0 || c.Min > c.Max || c.Min < 0 {
			return fmt.Errorf("%w: bad distribution %+v", engine.ErrInvalidArgument, c)
		}
	}
	if err := positiveWeights(p.ZoneWeights); err != nil {
		return err
	}
	return positiveWeights(p.FuelWeights)
}

func positiveWeights(w []float64) error {
	var sum float64
	for _, v := range w {
		if v < 0 {
			return fmt.Errorf("%w: negative weight %.2f", engine.ErrInvalidArgument, v)
		}
		sum += v
	}
	if sum == 0 {
		return fmt.Errorf("%w: weights sum to zero", engine.ErrInvalidArgument)
	}
	return nil
}
