// ColorStdoutWriter prints human-friendly, colorized latency records to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"exchange-latency-sim/internal/catalog"
	"exchange-latency-sim/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

var providerColors = map[catalog.Provider]string{
	catalog.ProviderAWS:   colorYellow,
	catalog.ProviderGCP:   colorBlue,
	catalog.ProviderAzure: colorCyan,
}

func statusColor(s telemetry.LatencyStatus) string {
	switch s {
	case telemetry.StatusLow:
		return colorGreen
	case telemetry.StatusMedium:
		return colorYellow
	default:
		return colorRed
	}
}

// ColorStdoutWriter prints records using ANSI colors. The exchange overview
// is printed once before the first write.
type ColorStdoutWriter struct {
	exchanges []catalog.Exchange
	out       io.Writer
	once      sync.Once
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(exchanges []catalog.Exchange) *ColorStdoutWriter {
	return &ColorStdoutWriter{exchanges: exchanges, out: os.Stdout}
}

func (w *ColorStdoutWriter) printOverview() {
	if len(w.exchanges) == 0 {
		return
	}
	fmt.Fprintln(w.out, "Exchanges:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tName\tProvider\tRegion\tCity\tStatus\n")
	for _, e := range w.exchanges {
		col := providerColors[e.CloudProvider]
		fmt.Fprintf(tw, "%s\t%s\t%s%s%s\t%s\t%s\t%s\n", e.ID, e.Name, col, e.CloudProvider, colorReset, e.Region, e.Location.City, e.Status)
	}
	tw.Flush()
	fmt.Fprintln(w.out)
}

// Write outputs a single record in colorized format.
func (w *ColorStdoutWriter) Write(r telemetry.LatencyRecord) error {
	w.once.Do(w.printOverview)

	fmt.Fprintf(w.out, "%s[%s]%s ", colorGray, r.Timestamp.Format(time.RFC3339), colorReset)
	fmt.Fprintf(w.out, "%sfrom=%s%s ", colorBlue, r.From, colorReset)
	fmt.Fprintf(w.out, "%sto=%s%s ", colorMagenta, r.To, colorReset)
	fmt.Fprintf(w.out, "%slatency=%s%s ", statusColor(r.Status), telemetry.FormatLatency(r.Latency), colorReset)
	if r.PacketLoss != nil {
		fmt.Fprintf(w.out, "%sloss=%s%s ", colorCyan, telemetry.FormatPercentage(*r.PacketLoss, 3), colorReset)
	}
	if r.Jitter != nil {
		fmt.Fprintf(w.out, "%sjitter=%.2fms%s ", colorYellow, *r.Jitter, colorReset)
	}
	fmt.Fprintf(w.out, "%sstatus=%s%s\n", statusColor(r.Status), r.Status, colorReset)
	return nil
}

// WriteBatch outputs multiple records.
func (w *ColorStdoutWriter) WriteBatch(recs []telemetry.LatencyRecord) error {
	for _, r := range recs {
		_ = w.Write(r)
	}
	return nil
}

func severityColor(s telemetry.Severity) string {
	switch s {
	case telemetry.SeverityHigh:
		return colorRed
	case telemetry.SeverityMedium:
		return colorYellow
	default:
		return colorGreen
	}
}

// WriteEvent prints a network incident to STDOUT.
func (w *ColorStdoutWriter) WriteEvent(e telemetry.NetworkEvent) error {
	w.once.Do(w.printOverview)
	end := "ongoing"
	if e.EndTime != nil {
		end = e.EndTime.Format(time.RFC3339)
	}
	fmt.Fprintf(w.out, "%s[%s]%s %sEVENT%s id=%s type=%s %sseverity=%s%s affected=%v until=%s %s%s%s\n",
		colorGray, e.StartTime.Format(time.RFC3339), colorReset,
		colorRed, colorReset, e.ID, e.Type,
		severityColor(e.Severity), e.Severity, colorReset,
		e.AffectedIDs, end, colorGray, e.Description, colorReset)
	return nil
}

// WriteEvents prints multiple incidents.
func (w *ColorStdoutWriter) WriteEvents(evs []telemetry.NetworkEvent) error {
	for _, e := range evs {
		_ = w.WriteEvent(e)
	}
	return nil
}
