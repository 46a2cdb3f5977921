// Package export serialises snapshots and historical series to CSV, JSON and
// GeoJSON.
package export

import (
	"fmt"
	"strings"
	"time"

	"exchange-latency-sim/internal/catalog"
	"exchange-latency-sim/internal/history"
	"exchange-latency-sim/internal/telemetry"
)

// Format is an export encoding.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatGeoJSON Format = "geojson"
)

// Version is written into export metadata.
const Version = "1.0"

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCSV, FormatJSON, FormatGeoJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, json or geojson)", s)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatGeoJSON:
		return "application/geo+json"
	default:
		return "application/json"
	}
}

// Options control an export.
type Options struct {
	// Metadata adds the comment header (CSV) or metadata block (JSON).
	Metadata  bool
	Exchanges []catalog.Exchange
	Regions   []catalog.CloudRegion
	Now       func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// FilterRecords keeps records touching any of ids. An empty ids keeps all.
func FilterRecords(records []telemetry.LatencyRecord, ids []string) []telemetry.LatencyRecord {
	if len(ids) == 0 {
		return records
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []telemetry.LatencyRecord
	for _, r := range records {
		if want[r.From] || want[r.To] {
			out = append(out, r)
		}
	}
	return out
}

// FilterHistory keeps points whose pair key mentions any of ids and, when
// cutoff is non-zero, whose timestamp is not before cutoff.
func FilterHistory(points []telemetry.HistoricalPoint, ids []string, cutoff time.Time) []telemetry.HistoricalPoint {
	var out []telemetry.HistoricalPoint
	for _, p := range points {
		if !cutoff.IsZero() && p.Timestamp.Before(cutoff) {
			continue
		}
		if len(ids) > 0 && !mentionsAny(p.PairKey, ids) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func mentionsAny(key string, ids []string) bool {
	for _, id := range ids {
		if strings.Contains(key, id) {
			return true
		}
	}
	return false
}

// Filename builds the download name for an export, e.g.
// "latency-data-2024-03-06.csv" or "historical-latency-24h-2024-03-06.json".
func Filename(historical bool, tr history.TimeRange, f Format, now time.Time) string {
	day := now.UTC().Format("2006-01-02")
	if !historical {
		return fmt.Sprintf("latency-data-%s.%s", day, f)
	}
	label := string(tr)
	if label == "" {
		label = "all"
	}
	return fmt.Sprintf("historical-latency-%s-%s.%s", label, day, f)
}

func isoTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
