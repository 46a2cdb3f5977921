package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"exchange-latency-sim/internal/history"
)

func writeTemp(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "simulation.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeTemp(t, `
tick_interval: 2s
seed: 42
thresholds:
  low_ms: 40
  medium_ms: 120
  high_ms: 250
events:
  count: 4
  lookback: 48h
history:
  distance_km: 8000
  ranges:
    1h:
      duration: 1h
      points: 30
  pairs:
    - binance-singapore-okx-hongkong
catalog:
  exchanges: [binance-singapore, okx-hongkong]
`)
	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.TickInterval != 2*time.Second || cfg.Seed != 42 {
		t.Errorf("unexpected tick/seed: %v %d", cfg.TickInterval, cfg.Seed)
	}
	if cfg.Thresholds.Low != 40 || cfg.Thresholds.High != 250 {
		t.Errorf("unexpected thresholds: %+v", cfg.Thresholds)
	}
	if cfg.Events.Count != 4 || cfg.Events.Lookback != 48*time.Hour {
		t.Errorf("unexpected events: %+v", cfg.Events)
	}
	if spec := cfg.History.Ranges[history.Range1h]; spec.Points != 30 {
		t.Errorf("1h override not applied: %+v", spec)
	}
	if spec := cfg.History.Ranges[history.Range30d]; spec.Points != 720 {
		t.Errorf("default 30d lost: %+v", spec)
	}
	if got := cfg.HistoryPairs(); len(got) != 1 {
		t.Errorf("HistoryPairs() = %v", got)
	}
	if len(cfg.Catalog.Exchanges) != 2 {
		t.Errorf("catalog subset = %v", cfg.Catalog.Exchanges)
	}
	// untouched sections keep their defaults
	if cfg.Snapshot.RouteSegments != 10 || cfg.Admin.Addr != ":8080" {
		t.Errorf("defaults not kept: %+v %+v", cfg.Snapshot, cfg.Admin)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TickInterval != 5*time.Second || cfg.History.DistanceKm != 5000 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if n := len(cfg.HistoryPairs()); n != 5 {
		t.Fatalf("default pairs = %d, want 5", n)
	}
}

func TestSchemaRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"unknown key":          "fleets: []\n",
		"bad duration":         "tick_interval: soon\n",
		"descending threshold": "thresholds:\n  low_ms: 100\n  medium_ms: 50\n  high_ms: 300\n",
		"zero points":          "history:\n  ranges:\n    1h:\n      duration: 1h\n      points: 0\n",
		"negative events":      "events:\n  count: -1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeTemp(t, body), ""); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadCustomSchema(t *testing.T) {
	dir := t.TempDir()
	schema := filepath.Join(dir, "strict.cue")
	if err := os.WriteFile(schema, []byte("#Config: {seed: 7}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(writeTemp(t, "seed: 8\n"), schema); err == nil {
		t.Fatal("expected custom schema to reject seed 8")
	}
	if _, err := Load(writeTemp(t, "seed: 7\n"), schema); err != nil {
		t.Fatalf("custom schema rejected valid config: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	if err == nil || !strings.Contains(err.Error(), "cannot read YAML config") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseValidatesTick(t *testing.T) {
	_, err := Parse([]byte("tick_interval: 0s\n"))
	if !errors.Is(err, ErrTickInterval) {
		t.Fatalf("expected ErrTickInterval, got %v", err)
	}
}

func TestSnapshotOptions(t *testing.T) {
	cfg := Default()
	cfg.Snapshot.CrossRegionKm = 2500
	opts := cfg.SnapshotOptions()
	if opts.CrossRegionKm != 2500 || opts.RouteSegments != 10 || opts.EventCount != 10 {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if len(cfg.HistoryOptions()) != 2 {
		t.Fatal("expected range and distance options")
	}
}

func TestEmbeddedSchemaIsCopied(t *testing.T) {
	a := Schema()
	a[0] = 'x'
	if Schema()[0] == 'x' {
		t.Fatal("Schema() exposed the embedded bytes")
	}
}

func TestExampleConfigLoads(t *testing.T) {
	cfg, err := Load("../../config/simulation.yaml", "")
	if err != nil {
		t.Fatalf("example config: %v", err)
	}
	if cfg.History.Ranges[history.Range7d].Duration != 168*time.Hour {
		t.Fatalf("7d range = %v", cfg.History.Ranges[history.Range7d])
	}
}
