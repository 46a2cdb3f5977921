package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"exchange-latency-sim/internal/admin"
	"exchange-latency-sim/internal/logging"
	"exchange-latency-sim/internal/observability"
	"exchange-latency-sim/internal/sim"
	"exchange-latency-sim/internal/stream"
)

var (
	simPrintOnly bool
	simTick      time.Duration
	simLogFile   string
	simTUI       bool
	simScenario  string
	simAdminAddr string
	simNoAdmin   bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the real-time latency simulator",
	Long:  "simulate regenerates the latency snapshot every tick and writes it to STDOUT, the TUI, GreptimeDB and an optional JSONL log, with an admin API alongside.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if simTUI {
			quiet, err := logging.NewWithOptions(io.Discard, rootLogLevel, rootLogFormat)
			if err != nil {
				return err
			}
			ctx = logging.NewContext(ctx, quiet)
		}
		log := logging.FromContext(ctx)
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("tick") {
			cfg.TickInterval = simTick
		}
		if simLogFile == "" {
			simLogFile = cfg.Output.File
		}
		if simAdminAddr != "" {
			cfg.Admin.Addr = simAdminAddr
		}

		eng, err := newEngine(log, cfg, simScenario)
		if err != nil {
			return err
		}

		writer, tui, cleanup, err := newWriters(writerOptions{
			printOnly: simPrintOnly,
			tui:       simTUI || cfg.Output.TUI,
			logFile:   simLogFile,
			greptime:  cfg.Output.GreptimeDB,
			exchanges: eng.cat.Exchanges(),
		})
		if err != nil {
			return err
		}
		defer cleanup()

		metrics, err := observability.NewCollector(prometheus.DefaultRegisterer)
		if err != nil {
			return err
		}

		st := stream.New(eng.gen, eng.cat.Exchanges(), eng.cat.Regions(), cfg.TickInterval)
		st.SetMetrics(metrics)
		defer st.Close()

		simulator := sim.NewSimulator(eng.gen, st, writer, writer)
		simulator.SetMetrics(metrics)
		if eng.scenario != nil {
			simulator.SetScenario(eng.scenario)
			log.Info("scenario loaded", "scenario", eng.scenario.Name, "phases", len(eng.scenario.Phases))
		}

		if tui != nil {
			tui.SetInjector(simulator.InjectIncident)
		}

		if !simNoAdmin {
			srv := admin.NewServer(simulator, admin.Options{
				Catalog:   eng.cat,
				Report:    eng.report,
				Pairs:     cfg.HistoryPairs(),
				Metrics:   metrics,
				RateLimit: cfg.Admin.RateLimit,
				Burst:     cfg.Admin.Burst,
				Logger:    log,
			})
			go func() {
				if tui != nil {
					tui.SetAdminStatus(true)
					defer tui.SetAdminStatus(false)
				}
				if err := srv.Start(ctx, cfg.Admin.Addr); err != nil {
					log.Error("admin server failed", "err", err)
				}
			}()
		}

		simulator.Run(ctx)
		log.Info("latency simulation stopped")
		return nil
	},
}

func init() {
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print JSON records to STDOUT instead of writing to GreptimeDB")
	simulateCmd.Flags().DurationVar(&simTick, "tick", stream.DefaultInterval, "Snapshot tick interval (e.g. 500ms, 5s)")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export records, events and history (JSONL)")
	simulateCmd.Flags().BoolVar(&simTUI, "tui", false, "Render the terminal dashboard")
	simulateCmd.Flags().StringVar(&simScenario, "scenario", "", "Built-in scenario name or path to a scenario YAML")
	simulateCmd.Flags().StringVar(&simAdminAddr, "admin-addr", "", "Admin API listen address (overrides config)")
	simulateCmd.Flags().BoolVar(&simNoAdmin, "no-admin", false, "Do not start the admin API")
}

