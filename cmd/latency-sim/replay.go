package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"exchange-latency-sim/internal/logging"
	"exchange-latency-sim/internal/sim"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a latency record log file",
	Long:  "replay feeds JSONL latency records from a log file back into GreptimeDB or STDOUT.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		if replaySpeed < 0 {
			return fmt.Errorf("speed must not be negative, got %v", replaySpeed)
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		writer, _, cleanup, err := newWriters(writerOptions{
			printOnly:  replayPrintOnly,
			greptime:   cfg.Output.GreptimeDB,
			isTerminal: func() bool { return false },
		})
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		log := logging.FromContext(ctx)
		log.Info("replaying records", "input", replayInput, "speed", replaySpeed)
		return sim.ReplayLogFile(ctx, replayInput, writer, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to a JSONL latency record log")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier (0 replays without delay)")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print records to STDOUT instead of writing to GreptimeDB")
	replayCmd.MarkFlagRequired("input")
}
