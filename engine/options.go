package engine

import (
	"fmt"
	"time"
)

// ============================================================================
// ENGINE OPTIONS — Functional options for Run()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	Threshold   float64 // fixed alert threshold, tons CO2
	Sigma       float64 // anomaly multiplier
	TopN        int     // top emitters in the summary
	TotalNode   bool    // add the terminal "Total Emissions" flow layer
	PrimaryPort string
	PeerECA     string // label given to relabeled ECA rows
	PeerNonECA  string // label given to relabeled Non-ECA rows
	GeneratedAt time.Time
}

// Bounds accepted for the runtime alert threshold.
const (
	MinAlertThreshold = 5.0
	MaxAlertThreshold = 30.0
)

// Defaults.
const (
	DefaultSigma      = 1.5
	DefaultTopN       = 5
	DefaultPrimary    = "Port Singapore"
	DefaultPeerECA    = "Port Jurong"
	DefaultPeerNonECA = "Port Sentosa"
)

// WithThreshold sets the alert threshold. Must lie in [5, 30].
func WithThreshold(tons float64) Option {
	return func(c *config) {
		c.Threshold = tons
	}
}

// WithSigma sets the anomaly multiplier k in mean + k·σ.
func WithSigma(k float64) Option {
	return func(c *config) {
		c.Sigma = k
	}
}

// WithTopN sets how many emitters the summary lists.
func WithTopN(n int) Option {
	return func(c *config) {
		c.TopN = n
	}
}

// WithTotalNode adds a zone → "Total Emissions" layer to flow graphs.
func WithTotalNode() Option {
	return func(c *config) {
		c.TotalNode = true
	}
}

// WithPorts overrides the benchmark labels: the primary port and the two
// relabeled peers (ECA rows, Non-ECA rows).
func WithPorts(primary, peerECA, peerNonECA string) Option {
	return func(c *config) {
		c.PrimaryPort = primary
		c.PeerECA = peerECA
		c.PeerNonECA = peerNonECA
	}
}

// WithGeneratedAt stamps briefs with t instead of the current time.
func WithGeneratedAt(t time.Time) Option {
	return func(c *config) {
		c.GeneratedAt = t
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Threshold:   DefaultAlertThreshold,
		Sigma:       DefaultSigma,
		TopN:        DefaultTopN,
		PrimaryPort: DefaultPrimary,
		PeerECA:     DefaultPeerECA,
		PeerNonECA:  DefaultPeerNonECA,
		GeneratedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// validate checks the knobs that have bounds.
func (c *config) validate() error {
	if err := checkThreshold(c.Threshold); err != nil {
		return err
	}
	if c.Sigma < 0 {
		return fmt.Errorf("%w: sigma %.2f must not be negative", ErrInvalidArgument, c.Sigma)
	}
	if c.TopN < 0 {
		return fmt.Errorf("%w: top %d must not be negative", ErrInvalidArgument, c.TopN)
	}
	return nil
}

func checkThreshold(t float64) error {
	if t < MinAlertThreshold || t > MaxAlertThreshold {
		return fmt.Errorf("%w: threshold %.2f outside [%.0f, %.0f]",
			ErrInvalidArgument, t, MinAlertThreshold, MaxAlertThreshold)
	}
	return nil
}
