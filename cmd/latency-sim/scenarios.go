package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"exchange-latency-sim/internal/scenario"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the built-in scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		builtIn := scenario.BuiltIn()
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tEXCHANGES\tPHASES\tDESCRIPTION")
		for _, name := range scenario.Names() {
			sc := builtIn[name]
			exs := "all"
			if len(sc.Exchanges) > 0 {
				exs = fmt.Sprint(len(sc.Exchanges))
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", name, exs, len(sc.Phases), sc.Description)
		}
		return tw.Flush()
	},
}
