package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"exchange-latency-sim/internal/catalog"
	"exchange-latency-sim/internal/config"
	"exchange-latency-sim/internal/history"
	"exchange-latency-sim/internal/scenario"
	"exchange-latency-sim/internal/snapshot"
)

// engine is everything a subcommand needs to produce data.
type engine struct {
	cfg      *config.Config
	full     *catalog.Catalog
	cat      *catalog.Catalog
	report   catalog.Report
	scenario *scenario.Scenario
	rng      *rand.Rand
	gen      *snapshot.Generator
}

// newRand seeds from the config; zero means a time based seed.
func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// loadCatalog builds the validated catalog from the configured file or the
// built-in tables.
func loadCatalog(log *slog.Logger, cfg *config.Config) (*catalog.Catalog, catalog.Report, error) {
	exs, rgs := catalog.Exchanges(), catalog.Regions()
	if cfg.Catalog.File != "" {
		var err error
		exs, rgs, err = catalog.LoadFile(cfg.Catalog.File)
		if err != nil {
			return nil, catalog.Report{}, err
		}
	}
	cat, report := catalog.Build(log, exs, rgs)
	return cat, report, nil
}

// newEngine loads the catalog, narrows it to the scenario or configured
// exchanges and prepares a snapshot generator with a fresh incident list.
func newEngine(log *slog.Logger, cfg *config.Config, scenarioName string) (*engine, error) {
	full, report, err := loadCatalog(log, cfg)
	if err != nil {
		return nil, err
	}
	e := &engine{cfg: cfg, full: full, cat: full, report: report}

	ids := cfg.Catalog.Exchanges
	if scenarioName != "" {
		sc, err := scenario.Resolve(scenarioName)
		if err != nil {
			return nil, err
		}
		if err := sc.Validate(full.Has); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		e.scenario = sc
		if len(sc.Exchanges) > 0 {
			ids = sc.Exchanges
		}
		if len(sc.Pairs) > 0 {
			cfg.History.Pairs = sc.Pairs
		}
	}
	if len(ids) > 0 {
		e.cat, err = full.Subset(ids)
		if err != nil {
			return nil, err
		}
	}

	e.rng = newRand(cfg.Seed)
	e.gen = snapshot.NewGenerator(e.rng, cfg.SnapshotOptions())
	e.gen.RefreshEvents(e.entityIDs())
	return e, nil
}

// entityIDs lists every exchange and region id in the active catalog.
func (e *engine) entityIDs() []string {
	exs, rgs := e.cat.Exchanges(), e.cat.Regions()
	ids := make([]string, 0, len(exs)+len(rgs))
	for _, x := range exs {
		ids = append(ids, x.ID)
	}
	for _, r := range rgs {
		ids = append(ids, r.ID)
	}
	return ids
}

// historyGenerator returns a history generator sharing the engine's
// randomness and incident list.
func (e *engine) historyGenerator() *history.Generator {
	opts := append(e.cfg.HistoryOptions(),
		history.WithResolver(e.full),
		history.WithEvents(e.gen.Events()),
	)
	return history.NewGenerator(e.rng, opts...)
}
