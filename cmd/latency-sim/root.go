package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"exchange-latency-sim/internal/config"
	"exchange-latency-sim/internal/logging"
)

var (
	rootConfigPath string
	rootSchemaPath string
	rootEnvFile    string
	rootLogLevel   string
	rootLogFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "latency-sim",
	Short: "Synthetic crypto exchange latency toolkit",
	Long:  "latency-sim generates synthetic network latency between crypto exchanges and cloud regions, streams it to sinks and exports snapshots, history and reports.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnvFile(rootEnvFile); err != nil {
			return err
		}
		log, err := logging.NewWithOptions(os.Stderr, rootLogLevel, rootLogFormat)
		if err != nil {
			return err
		}
		cmd.SetContext(logging.NewContext(cmd.Context(), log))
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadEnvFile reads KEY=VALUE pairs into the environment. A missing file is
// not an error; variables already set win.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// loadConfig reads the configuration named by the persistent flags and
// applies environment overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(rootConfigPath, rootSchemaPath)
	if err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootConfigPath, "config", "", "Path to simulation configuration YAML (defaults when empty)")
	pf.StringVar(&rootSchemaPath, "schema", "", "Path to CUE schema file (embedded schema when empty)")
	pf.StringVar(&rootEnvFile, "env-file", ".env", "Optional dotenv file loaded before anything else")
	pf.StringVar(&rootLogLevel, "log-level", "info", "Log level: debug, info, warn or error")
	pf.StringVar(&rootLogFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(scenariosCmd)
}
