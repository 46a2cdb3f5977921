package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"exchange-latency-sim/internal/logging"
)

var (
	snapScenario string
	snapCompact  bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print one latency snapshot as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.FromContext(cmd.Context())
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		eng, err := newEngine(log, cfg, snapScenario)
		if err != nil {
			return err
		}
		snap := eng.gen.Generate(eng.cat.Exchanges(), eng.cat.Regions())
		if snap.Skipped > 0 {
			log.Warn("snapshot skipped records", "skipped", snap.Skipped, "errors", snap.Errors)
		}
		enc := json.NewEncoder(os.Stdout)
		if !snapCompact {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(snap)
	},
}

func init() {
	snapshotCmd.Flags().StringVar(&snapScenario, "scenario", "", "Built-in scenario name or path to a scenario YAML")
	snapshotCmd.Flags().BoolVar(&snapCompact, "compact", false, "Print a single JSON line")
}
