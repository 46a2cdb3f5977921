package main

import (
	"github.com/spf13/cobra"

	"exchange-latency-sim/internal/dashboard"
	"exchange-latency-sim/internal/logging"
)

var dashOut string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Render Grafana dashboards for the GreptimeDB tables",
	Long:  "dashboard renders the Grafana dashboard templates into --out. The datasource uid is read from GREPTIMEDB_DATASOURCE_UID.",
	RunE: func(cmd *cobra.Command, args []string) error {
		// applies table name overrides
		if _, err := loadConfig(); err != nil {
			return err
		}
		paths, err := dashboard.Render(dashOut, dashboard.DefaultTables())
		if err != nil {
			return err
		}
		log := logging.FromContext(cmd.Context())
		for _, p := range paths {
			log.Info("dashboard rendered", "path", p)
		}
		return nil
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashOut, "out", "build", "Output directory")
}
