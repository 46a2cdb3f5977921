package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"exchange-latency-sim/internal/config"
	"exchange-latency-sim/internal/telemetry"
)

// applyEnv overlays environment variables on cfg. Table names are re-read
// here because a dotenv file is loaded after package initialisation.
func applyEnv(cfg *config.Config) error {
	if v := os.Getenv("TICK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TICK_INTERVAL: %w", err)
		}
		if d <= 0 {
			return config.ErrTickInterval
		}
		cfg.TickInterval = d
	}
	if v := os.Getenv("SIM_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SIM_SEED: %w", err)
		}
		cfg.Seed = seed
	}
	if v := os.Getenv("ADMIN_ADDR"); v != "" {
		cfg.Admin.Addr = v
	}
	if v := os.Getenv("GREPTIMEDB_ENDPOINT"); v != "" {
		cfg.Output.GreptimeDB.Endpoint = v
	}
	if v := os.Getenv("GREPTIMEDB_DATABASE"); v != "" {
		cfg.Output.GreptimeDB.Database = v
	}
	if v := os.Getenv("GREPTIMEDB_LATENCY_TABLE"); v != "" {
		telemetry.LatencyTableName = v
	}
	if v := os.Getenv("GREPTIMEDB_HISTORY_TABLE"); v != "" {
		telemetry.HistoryTableName = v
	}
	if v := os.Getenv("GREPTIMEDB_EVENT_TABLE"); v != "" {
		telemetry.EventTableName = v
	}
	return nil
}
