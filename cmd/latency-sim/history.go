package main

import (
	"github.com/spf13/cobra"

	"exchange-latency-sim/internal/history"
	"exchange-latency-sim/internal/logging"
	"exchange-latency-sim/internal/telemetry"
)

var (
	histRange     string
	histPairs     []string
	histPoints    int
	histPrintOnly bool
	histLogFile   string
	histScenario  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Generate a historical latency series",
	Long:  "history generates a seasonal series for each pair and writes it to GreptimeDB when an endpoint is configured, or as JSON lines to STDOUT.",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.FromContext(cmd.Context())
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		eng, err := newEngine(log, cfg, histScenario)
		if err != nil {
			return err
		}

		pairs := histPairs
		if len(pairs) == 0 {
			pairs = cfg.HistoryPairs()
		}
		gen := eng.historyGenerator()
		tr := history.TimeRange(histRange)
		var (
			points []telemetry.HistoricalPoint
			diag   history.Diagnostics
		)
		if histPoints > 0 {
			points, diag, err = gen.Generate(pairs, tr, histPoints)
		} else {
			points, diag, err = gen.GenerateRange(pairs, tr)
		}
		if err != nil {
			return err
		}
		for _, key := range diag.Skipped {
			log.Warn("skipped unknown pair", "pair", key)
		}

		writer, cleanup, err := newHistoryWriter(writerOptions{
			printOnly: histPrintOnly,
			logFile:   histLogFile,
			greptime:  cfg.Output.GreptimeDB,
		})
		if err != nil {
			return err
		}
		defer cleanup()
		if err := writer.WriteHistory(points); err != nil {
			return err
		}
		log.Info("history written", "range", tr, "pairs", len(pairs)-len(diag.Skipped), "points", len(points))
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&histRange, "range", string(history.Range24h), "Time range: 1h, 24h, 7d or 30d")
	historyCmd.Flags().StringSliceVar(&histPairs, "pairs", nil, "Pair keys (from-to); configured pairs when empty")
	historyCmd.Flags().IntVar(&histPoints, "points", 0, "Override the point count for the range")
	historyCmd.Flags().BoolVar(&histPrintOnly, "print-only", false, "Print JSON lines to STDOUT instead of writing to GreptimeDB")
	historyCmd.Flags().StringVar(&histLogFile, "log-file", "", "Also append the series to <log-file>.history")
	historyCmd.Flags().StringVar(&histScenario, "scenario", "", "Built-in scenario name or path to a scenario YAML")
}
