// Package config loads runtime settings for the CLI and HTTP server.
//
// Precedence, lowest first: built-in defaults, the YAML file, PORTEMISSION_*
// environment variables. Command-line flags are applied by the caller.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spektr-org/portemission/engine"
	"github.com/spektr-org/portemission/synth"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PORTEMISSION_"

// AnchorLayout is the date format of data.anchor.
const AnchorLayout = "2006-01-02"

// Config holds runtime configuration.
type Config struct {
	Data   DataConfig   `yaml:"data"`
	Engine EngineConfig `yaml:"engine"`
	Server ServerConfig `yaml:"server"`
	Redis  RedisConfig  `yaml:"redis"`
}

// DataConfig selects the dataset: a file when Input is set, otherwise a
// synthesized snapshot.
type DataConfig struct {
	Rows     int           `yaml:"rows"`
	Seed     uint64        `yaml:"seed"`
	Anchor   string        `yaml:"anchor"` // YYYY-MM-DD; empty = today
	Input    string        `yaml:"input"`  // .csv or .parquet
	Allow    []int         `yaml:"allow"`  // IMO allow-list; empty = all
	CacheTTL time.Duration `yaml:"cache_ttl"`
	Profile  synth.Profile `yaml:"profile"`
}

// EngineConfig carries the view tuning knobs.
type EngineConfig struct {
	Threshold   float64 `yaml:"threshold"`
	Sigma       float64 `yaml:"sigma"`
	TopN        int     `yaml:"top_n"`
	TotalNode   bool    `yaml:"total_node"`
	PrimaryPort string  `yaml:"primary_port"`
	PeerECA     string  `yaml:"peer_eca"`
	PeerNonECA  string  `yaml:"peer_non_eca"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// RedisConfig enables the shared snapshot store when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Data: DataConfig{
			Rows:     500,
			Seed:     42,
			CacheTTL: 10 * time.Minute,
			Profile:  synth.DefaultProfile(),
		},
		Engine: EngineConfig{
			Threshold:   engine.DefaultAlertThreshold,
			Sigma:       engine.DefaultSigma,
			TopN:        engine.DefaultTopN,
			PrimaryPort: engine.DefaultPrimary,
			PeerECA:     engine.DefaultPeerECA,
			PeerNonECA:  engine.DefaultPeerNonECA,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Redis: RedisConfig{
			TTL: time.Hour,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is non-empty) and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("unmarshal %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides fields from PORTEMISSION_* variables.
func (c *Config) applyEnv() error {
	var err error
	c.Data.Rows, err = envInt("ROWS", c.Data.Rows)
	if err != nil {
		return err
	}
	if v := getEnv("SEED", ""); v != "" {
		seed, perr := strconv.ParseUint(v, 10, 64)
		if perr != nil {
			return fmt.Errorf("%sSEED: %w", EnvPrefix, perr)
		}
		c.Data.Seed = seed
	}
	c.Data.Anchor = getEnv("ANCHOR", c.Data.Anchor)
	c.Data.Input = getEnv("INPUT", c.Data.Input)
	if v := getEnv("ALLOW", ""); v != "" {
		c.Data.Allow = nil
		for _, part := range splitAndTrim(v, ",") {
			imo, perr := strconv.Atoi(part)
			if perr != nil {
				return fmt.Errorf("%sALLOW: %w", EnvPrefix, perr)
			}
			c.Data.Allow = append(c.Data.Allow, imo)
		}
	}
	if c.Engine.Threshold, err = envFloat("THRESHOLD", c.Engine.Threshold); err != nil {
		return err
	}
	if c.Engine.Sigma, err = envFloat("SIGMA", c.Engine.Sigma); err != nil {
		return err
	}
	if c.Engine.TopN, err = envInt("TOP_N", c.Engine.TopN); err != nil {
		return err
	}
	c.Server.Addr = getEnv("ADDR", c.Server.Addr)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	if c.Redis.DB, err = envInt("REDIS_DB", c.Redis.DB); err != nil {
		return err
	}
	return nil
}

// Validate checks ranges before anything is generated or served.
func (c Config) Validate() error {
	if c.Data.Input == "" && c.Data.Rows <= 0 {
		return fmt.Errorf("%w: data.rows must be positive", engine.ErrInvalidArgument)
	}
	if _, err := c.AnchorTime(); err != nil {
		return err
	}
	if err := c.Data.Profile.Validate(); err != nil {
		return fmt.Errorf("data.profile: %w", err)
	}
	if c.Engine.Threshold < engine.MinAlertThreshold || c.Engine.Threshold > engine.MaxAlertThreshold {
		return fmt.Errorf("%w: engine.threshold %.1f outside [%.0f, %.0f]", engine.ErrInvalidArgument,
			c.Engine.Threshold, engine.MinAlertThreshold, engine.MaxAlertThreshold)
	}
	if c.Engine.Sigma < 0 {
		return fmt.Errorf("%w: engine.sigma must not be negative", engine.ErrInvalidArgument)
	}
	if c.Engine.TopN < 0 {
		return fmt.Errorf("%w: engine.top_n must not be negative", engine.ErrInvalidArgument)
	}
	if c.Data.CacheTTL < 0 || c.Redis.TTL < 0 {
		return fmt.Errorf("%w: ttl must not be negative", engine.ErrInvalidArgument)
	}
	return nil
}

// AnchorTime parses data.anchor; empty means today (UTC).
func (c Config) AnchorTime() (time.Time, error) {
	if c.Data.Anchor == "" {
		return engine.Day(time.Now()), nil
	}
	t, err := time.Parse(AnchorLayout, c.Data.Anchor)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: data.anchor %q is not YYYY-MM-DD", engine.ErrInvalidArgument, c.Data.Anchor)
	}
	return t, nil
}

// EngineOptions converts the engine section into dispatcher options.
func (c Config) EngineOptions() []engine.Option {
	opts := []engine.Option{
		engine.WithThreshold(c.Engine.Threshold),
		engine.WithSigma(c.Engine.Sigma),
		engine.WithTopN(c.Engine.TopN),
		engine.WithPorts(c.Engine.PrimaryPort, c.Engine.PeerECA, c.Engine.PeerNonECA),
	}
	if c.Engine.TotalNode {
		opts = append(opts, engine.WithTotalNode())
	}
	return opts
}

func getEnv(key, def string) string {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return i, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return f, nil
}

func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
