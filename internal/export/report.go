package export

import (
	"encoding/json"
	"io"
	"math"

	"exchange-latency-sim/internal/catalog"
	"exchange-latency-sim/internal/history"
	"exchange-latency-sim/internal/telemetry"
)

// reportHistoryTail caps the historical points embedded in a report.
const reportHistoryTail = 100

// ReportMetadata heads an analysis report.
type ReportMetadata struct {
	Title       string `json:"title"`
	GeneratedAt string `json:"generatedAt"`
	TimeRange   string `json:"timeRange"`
	Version     string `json:"version"`
}

// Summary aggregates a snapshot.
type Summary struct {
	TotalExchanges            int            `json:"totalExchanges"`
	TotalRegions              int            `json:"totalRegions"`
	TotalConnections          int            `json:"totalConnections"`
	AverageLatency            float64        `json:"averageLatency"`
	MinLatency                float64        `json:"minLatency"`
	MaxLatency                float64        `json:"maxLatency"`
	HighLatencyConnections    int            `json:"highLatencyConnections"`
	CloudProviderDistribution map[string]int `json:"cloudProviderDistribution"`
	ReportPeriod              string         `json:"reportPeriod"`
	DataQuality               string         `json:"dataQuality"`
}

// ExchangeReport is an exchange with its connection statistics.
type ExchangeReport struct {
	catalog.Exchange
	Connections    int     `json:"connections"`
	AverageLatency float64 `json:"averageLatency"`
}

// Report is the full analysis document.
type Report struct {
	Metadata           ReportMetadata              `json:"metadata"`
	Summary            Summary                     `json:"summary"`
	Exchanges          []ExchangeReport            `json:"exchanges"`
	Regions            []catalog.CloudRegion       `json:"regions"`
	CurrentLatencyData []telemetry.LatencyRecord   `json:"currentLatencyData"`
	HistoricalData     []telemetry.HistoricalPoint `json:"historicalData"`
	Recommendations    []string                    `json:"recommendations"`
}

// DataQuality grades mean packet loss: below 1% is Good, below 2.5% Fair,
// anything else Poor.
func DataQuality(records []telemetry.LatencyRecord) string {
	var sum float64
	var n int
	for _, r := range records {
		if r.PacketLoss != nil {
			sum += *r.PacketLoss
			n++
		}
	}
	switch {
	case n == 0 || sum/float64(n) < 1:
		return "Good"
	case sum/float64(n) < 2.5:
		return "Fair"
	default:
		return "Poor"
	}
}

// BuildReport summarises records and the tail of points. An empty tr means
// the current snapshot.
func BuildReport(records []telemetry.LatencyRecord, points []telemetry.HistoricalPoint, tr history.TimeRange, opts Options) Report {
	sum := Summary{
		TotalExchanges:            len(opts.Exchanges),
		TotalRegions:              len(opts.Regions),
		TotalConnections:          len(records),
		CloudProviderDistribution: map[string]int{},
		ReportPeriod:              "Current snapshot",
		DataQuality:               DataQuality(records),
	}
	if tr != "" {
		sum.ReportPeriod = "Last " + string(tr)
	}
	if len(records) > 0 {
		sum.MinLatency = math.Inf(1)
		sum.MaxLatency = math.Inf(-1)
		var total float64
		for _, r := range records {
			total += r.Latency
			sum.MinLatency = math.Min(sum.MinLatency, r.Latency)
			sum.MaxLatency = math.Max(sum.MaxLatency, r.Latency)
			if r.Status == telemetry.StatusHigh || r.Status == telemetry.StatusCritical {
				sum.HighLatencyConnections++
			}
		}
		sum.AverageLatency = total / float64(len(records))
	}
	for _, e := range opts.Exchanges {
		sum.CloudProviderDistribution[string(e.CloudProvider)]++
	}

	exs := make([]ExchangeReport, 0, len(opts.Exchanges))
	for _, e := range opts.Exchanges {
		er := ExchangeReport{Exchange: e}
		var total float64
		for _, r := range records {
			if r.From == e.ID || r.To == e.ID {
				er.Connections++
				total += r.Latency
			}
		}
		if er.Connections > 0 {
			er.AverageLatency = total / float64(er.Connections)
		}
		exs = append(exs, er)
	}

	tail := points
	if len(tail) > reportHistoryTail {
		tail = tail[len(tail)-reportHistoryTail:]
	}

	var recs []string
	if sum.AverageLatency > 200 {
		recs = append(recs, "Consider optimizing network routes for high-latency connections")
	}
	if float64(sum.HighLatencyConnections) > float64(len(records))*0.2 {
		recs = append(recs, "High number of slow connections detected")
	}
	recs = append(recs, "Regular monitoring recommended for optimal performance")

	period := string(tr)
	if period == "" {
		period = "current"
	}
	return Report{
		Metadata: ReportMetadata{
			Title:       "Exchange Latency Analysis Report",
			GeneratedAt: isoTime(opts.now()),
			TimeRange:   period,
			Version:     Version,
		},
		Summary:            sum,
		Exchanges:          exs,
		Regions:            opts.Regions,
		CurrentLatencyData: records,
		HistoricalData:     tail,
		Recommendations:    recs,
	}
}

// WriteReport encodes r as indented JSON.
func WriteReport(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
