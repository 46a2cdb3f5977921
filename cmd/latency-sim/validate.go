package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"exchange-latency-sim/internal/catalog"
	"exchange-latency-sim/internal/logging"
	"exchange-latency-sim/internal/scenario"
)

var (
	valStrict   bool
	valScenario string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration, catalog and an optional scenario",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.FromContext(cmd.Context())
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		cat, report, err := loadCatalog(log, cfg)
		if err != nil {
			return err
		}
		printReport(os.Stdout, report)

		for _, id := range cfg.Catalog.Exchanges {
			if !cat.Has(id) {
				return fmt.Errorf("catalog.exchanges: unknown exchange %q", id)
			}
		}
		if valScenario != "" {
			sc, err := scenario.Resolve(valScenario)
			if err != nil {
				return err
			}
			if err := sc.Validate(cat.Has); err != nil {
				return fmt.Errorf("scenario %s: %w", sc.Name, err)
			}
			fmt.Fprintf(os.Stdout, "scenario %s: %d phases ok\n", sc.Name, len(sc.Phases))
		}
		if valStrict && report.Invalid() > 0 {
			return fmt.Errorf("%d catalog entries rejected", report.Invalid())
		}
		return nil
	},
}

// printReport writes the validation summary as an aligned table followed by
// one line per rejected entry.
func printReport(w io.Writer, r catalog.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tVALID\tINVALID")
	fmt.Fprintf(tw, "exchanges\t%d\t%d\n", r.Exchanges.ValidCount, r.Exchanges.InvalidCount)
	fmt.Fprintf(tw, "regions\t%d\t%d\n", r.Regions.ValidCount, r.Regions.InvalidCount)
	tw.Flush()
	for _, e := range r.Exchanges.Errors {
		fmt.Fprintf(w, "exchange #%d %s: %s\n", e.Index, e.ID, strings.Join(e.Errors, "; "))
	}
	for _, e := range r.Regions.Errors {
		fmt.Fprintf(w, "region #%d %s: %s\n", e.Index, e.ID, strings.Join(e.Errors, "; "))
	}
}

func init() {
	validateCmd.Flags().BoolVar(&valStrict, "strict", false, "Fail when any catalog entry is rejected")
	validateCmd.Flags().StringVar(&valScenario, "scenario", "", "Also validate this scenario name or file")
}
