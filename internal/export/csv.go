package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"exchange-latency-sim/internal/telemetry"
)

var (
	recordHeader  = []string{"From", "To", "Latency (ms)", "Status", "Packet Loss (%)", "Jitter (ms)", "Timestamp"}
	historyHeader = []string{"Timestamp", "Exchange Pair", "Latency (ms)", "Packet Loss (%)", "Jitter (ms)", "Volume"}
)

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func optNum(v *float64) string {
	if v == nil {
		return "0"
	}
	return num(*v)
}

func writeMetadata(w io.Writer, kind string, total int, opts Options) error {
	if !opts.Metadata {
		return nil
	}
	_, err := fmt.Fprintf(w, "# Exchange Latency Export\n# Generated: %s\n# Data Type: %s Latency Data\n# Total Records: %d\n#\n",
		isoTime(opts.now()), kind, total)
	return err
}

// RecordsCSV writes snapshot records as CSV. Nothing is written for an
// empty slice.
func RecordsCSV(w io.Writer, records []telemetry.LatencyRecord, opts Options) error {
	if len(records) == 0 {
		return nil
	}
	if err := writeMetadata(w, "Current", len(records), opts); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(recordHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{r.From, r.To, num(r.Latency), string(r.Status), optNum(r.PacketLoss), optNum(r.Jitter), isoTime(r.Timestamp)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// HistoryCSV writes historical points as CSV. Nothing is written for an
// empty slice.
func HistoryCSV(w io.Writer, points []telemetry.HistoricalPoint, opts Options) error {
	if len(points) == 0 {
		return nil
	}
	if err := writeMetadata(w, "Historical", len(points), opts); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(historyHeader); err != nil {
		return err
	}
	for _, p := range points {
		row := []string{isoTime(p.Timestamp), p.PairKey, num(p.Latency), num(p.PacketLoss), num(p.Jitter), optNum(p.Volume)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
