// YAML config loader with CUE validation integration
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"exchange-latency-sim/internal/events"
	"exchange-latency-sim/internal/history"
	"exchange-latency-sim/internal/latency"
	"exchange-latency-sim/internal/snapshot"
	"exchange-latency-sim/internal/stream"
	"exchange-latency-sim/internal/telemetry"
)

// SnapshotConfig shapes the all-pairs snapshot.
type SnapshotConfig struct {
	RouteSegments   int     `yaml:"route_segments"`
	CrossRegionKm   float64 `yaml:"cross_region_km"`
	ReverseSpreadMs float64 `yaml:"reverse_spread_ms"`
}

// EventsConfig controls generated network incidents.
type EventsConfig struct {
	Count    int           `yaml:"count"`
	Lookback time.Duration `yaml:"lookback"`
}

// HistoryConfig controls the historical series generator.
type HistoryConfig struct {
	DistanceKm float64        `yaml:"distance_km"`
	Ranges     history.Ranges `yaml:"ranges"`
	Pairs      []string       `yaml:"pairs"`
}

// CatalogConfig selects the reference data. File replaces the built-in
// tables; Exchanges restricts the run to a subset of ids.
type CatalogConfig struct {
	File      string   `yaml:"file"`
	Exchanges []string `yaml:"exchanges"`
}

// AdminConfig configures the HTTP admin server.
type AdminConfig struct {
	Addr      string  `yaml:"addr"`
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
}

// GreptimeConfig points at a GreptimeDB instance. An empty endpoint disables
// the sink.
type GreptimeConfig struct {
	Endpoint string `yaml:"endpoint"`
	Database string `yaml:"database"`
}

// OutputConfig selects sinks besides stdout.
type OutputConfig struct {
	File       string         `yaml:"file"`
	TUI        bool           `yaml:"tui"`
	GreptimeDB GreptimeConfig `yaml:"greptimedb"`
}

// Config is the root configuration.
type Config struct {
	TickInterval time.Duration      `yaml:"tick_interval"`
	Seed         int64              `yaml:"seed"`
	Thresholds   latency.Thresholds `yaml:"thresholds"`
	Snapshot     SnapshotConfig     `yaml:"snapshot"`
	Events       EventsConfig       `yaml:"events"`
	History      HistoryConfig      `yaml:"history"`
	Catalog      CatalogConfig      `yaml:"catalog"`
	Admin        AdminConfig        `yaml:"admin"`
	Output       OutputConfig       `yaml:"output"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		TickInterval: stream.DefaultInterval,
		Thresholds:   latency.DefaultThresholds(),
		Snapshot: SnapshotConfig{
			RouteSegments:   snapshot.DefaultRouteSegments,
			CrossRegionKm:   snapshot.DefaultCrossRegionKm,
			ReverseSpreadMs: snapshot.DefaultReverseSpread,
		},
		Events: EventsConfig{
			Count:    events.DefaultCount,
			Lookback: events.DefaultLookback,
		},
		History: HistoryConfig{
			DistanceKm: history.DefaultDistanceKm,
			Ranges:     history.DefaultRanges(),
		},
		Admin: AdminConfig{
			Addr:      ":8080",
			RateLimit: 20,
			Burst:     40,
		},
		Output: OutputConfig{
			GreptimeDB: GreptimeConfig{Database: "public"},
		},
	}
}

// Load reads a YAML file, validates it against the CUE schema and overlays it
// on Default. An empty configPath returns the defaults; an empty
// cueSchemaPath uses the embedded schema.
func Load(configPath, cueSchemaPath string) (*Config, error) {
	if configPath == "" {
		return Default(), nil
	}
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse overlays YAML data on Default without schema validation.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ErrTickInterval is returned for a non-positive tick interval.
var ErrTickInterval = errors.New("tick_interval must be positive")

// Validate checks cross-field rules the loaders rely on.
func (c *Config) Validate() error {
	if c.TickInterval <= 0 {
		return ErrTickInterval
	}
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if err := c.History.Ranges.Validate(); err != nil {
		return err
	}
	if c.History.DistanceKm <= 0 {
		return fmt.Errorf("history distance_km must be positive, got %v", c.History.DistanceKm)
	}
	if c.Events.Count < 0 {
		return fmt.Errorf("events count must not be negative, got %d", c.Events.Count)
	}
	return nil
}

// SnapshotOptions converts the config into snapshot generator options.
func (c *Config) SnapshotOptions() snapshot.Options {
	return snapshot.Options{
		Thresholds:    c.Thresholds,
		RouteSegments: c.Snapshot.RouteSegments,
		CrossRegionKm: c.Snapshot.CrossRegionKm,
		ReverseSpread: c.Snapshot.ReverseSpreadMs,
		EventCount:    c.Events.Count,
		EventLookback: c.Events.Lookback,
	}
}

// HistoryOptions returns the history generator options implied by the
// config. Callers append resolver / event options of their own.
func (c *Config) HistoryOptions() []history.Option {
	return []history.Option{
		history.WithRanges(c.History.Ranges),
		history.WithDistance(c.History.DistanceKm),
	}
}

// HistoryPairs returns the configured pair keys, falling back to the
// popular pairs preset.
func (c *Config) HistoryPairs() []string {
	if len(c.History.Pairs) > 0 {
		return append([]string(nil), c.History.Pairs...)
	}
	return telemetry.PairKeys(history.PopularPairs())
}
