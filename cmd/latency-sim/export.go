package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"exchange-latency-sim/internal/export"
	"exchange-latency-sim/internal/history"
	"exchange-latency-sim/internal/logging"
	"exchange-latency-sim/internal/telemetry"
)

var (
	expKind      string
	expFormat    string
	expRange     string
	expExchanges []string
	expNoMeta    bool
	expOut       string
	expScenario  string
)

// exportJob is one resolved export request.
type exportJob struct {
	kind    string
	format  export.Format
	tr      history.TimeRange
	records []telemetry.LatencyRecord
	points  []telemetry.HistoricalPoint
	opts    export.Options
}

// filename returns the default output name for the job.
func (j exportJob) filename(now time.Time) string {
	switch j.kind {
	case "report":
		return "latency-report-" + now.UTC().Format("2006-01-02") + ".json"
	case "historical":
		return export.Filename(true, j.tr, j.format, now)
	default:
		return export.Filename(false, "", j.format, now)
	}
}

// write encodes the job to w.
func (j exportJob) write(w io.Writer) error {
	switch j.kind {
	case "", "current":
		switch j.format {
		case export.FormatCSV:
			return export.RecordsCSV(w, j.records, j.opts)
		case export.FormatGeoJSON:
			return export.WriteGeoJSON(w, j.opts.Exchanges, j.opts.Regions, j.records)
		default:
			return export.RecordsJSON(w, j.records, j.opts)
		}
	case "historical":
		switch j.format {
		case export.FormatCSV:
			return export.HistoryCSV(w, j.points, j.opts)
		case export.FormatGeoJSON:
			return fmt.Errorf("geojson export is only available for current data")
		default:
			return export.HistoryJSON(w, j.points, j.opts)
		}
	case "report":
		return export.WriteReport(w, export.BuildReport(j.records, j.points, j.tr, j.opts))
	}
	return fmt.Errorf("unknown export kind %q", j.kind)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export current data, a historical series or an analysis report",
	Long:  "export generates a snapshot (and a series for historical data or reports) and writes it as CSV, JSON or GeoJSON. Use --out - to write to STDOUT.",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.FromContext(cmd.Context())
		format, err := export.ParseFormat(expFormat)
		if err != nil {
			return err
		}
		switch expKind {
		case "current", "historical", "report":
		default:
			return fmt.Errorf("unknown export kind %q (want current, historical or report)", expKind)
		}
		if expKind == "historical" && format == export.FormatGeoJSON {
			return fmt.Errorf("geojson export is only available for current data")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		eng, err := newEngine(log, cfg, expScenario)
		if err != nil {
			return err
		}

		now := time.Now()
		job := exportJob{
			kind:   expKind,
			format: format,
			tr:     history.TimeRange(expRange),
			opts: export.Options{
				Metadata:  !expNoMeta,
				Exchanges: eng.cat.Exchanges(),
				Regions:   eng.cat.Regions(),
				Now:       func() time.Time { return now },
			},
		}
		snap := eng.gen.Generate(eng.cat.Exchanges(), eng.cat.Regions())
		job.records = export.FilterRecords(snap.Records, expExchanges)
		if expKind != "current" {
			points, diag, err := eng.historyGenerator().GenerateRange(cfg.HistoryPairs(), job.tr)
			if err != nil {
				return err
			}
			for _, key := range diag.Skipped {
				log.Warn("skipped unknown pair", "pair", key)
			}
			job.points = export.FilterHistory(points, expExchanges, time.Time{})
		}

		if expOut == "-" {
			return job.write(os.Stdout)
		}
		path := expOut
		if path == "" {
			path = job.filename(now)
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		if err := job.write(f); err != nil {
			f.Close()
			os.Remove(path)
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.Info("export written", "path", path, "kind", expKind, "format", format,
			"records", len(job.records), "points", len(job.points))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&expKind, "kind", "current", "What to export: current, historical or report")
	exportCmd.Flags().StringVar(&expFormat, "format", string(export.FormatJSON), "Encoding: csv, json or geojson")
	exportCmd.Flags().StringVar(&expRange, "range", string(history.Range24h), "History range for historical data and reports")
	exportCmd.Flags().StringSliceVar(&expExchanges, "exchanges", nil, "Only keep data involving these exchange ids")
	exportCmd.Flags().BoolVar(&expNoMeta, "no-metadata", false, "Omit the metadata header or block")
	exportCmd.Flags().StringVar(&expOut, "out", "", "Output path; generated name when empty, - for STDOUT")
	exportCmd.Flags().StringVar(&expScenario, "scenario", "", "Built-in scenario name or path to a scenario YAML")
}
