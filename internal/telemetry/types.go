// Latency record types shared by generators, sinks and exporters.
package telemetry

import (
	"os"
	"time"

	"exchange-latency-sim/internal/geo"
)

// LatencyStatus buckets a latency value for presentation.
type LatencyStatus string

const (
	StatusLow      LatencyStatus = "low"
	StatusMedium   LatencyStatus = "medium"
	StatusHigh     LatencyStatus = "high"
	StatusCritical LatencyStatus = "critical"
)

// LatencyRecord is one directional edge of a snapshot.
type LatencyRecord struct {
	From       string           `json:"from"`                 // TAG
	To         string           `json:"to"`                   // TAG
	Latency    float64          `json:"latency"`              // FIELD, ms
	Status     LatencyStatus    `json:"status"`               // FIELD
	PacketLoss *float64         `json:"packetLoss,omitempty"` // FIELD, percent
	Jitter     *float64         `json:"jitter,omitempty"`     // FIELD, ms
	Route      []geo.Coordinate `json:"route"`
	Timestamp  time.Time        `json:"timestamp"` // TIME INDEX
}

// HistoricalPoint is one bucket of a synthetic time series.
type HistoricalPoint struct {
	Timestamp  time.Time `json:"timestamp"`    // TIME INDEX
	PairKey    string    `json:"exchangePair"` // TAG
	Latency    float64   `json:"latency"`
	PacketLoss float64   `json:"packetLoss"`
	Jitter     float64   `json:"jitter"`
	Volume     *float64  `json:"volume,omitempty"`
}

// EventType classifies a network incident.
type EventType string

const (
	EventCongestion  EventType = "congestion"
	EventMaintenance EventType = "maintenance"
	EventOutage      EventType = "outage"
)

// Severity grades a network incident.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// NetworkEvent is a time bounded incident affecting a set of entities. A nil
// EndTime means the event is ongoing.
type NetworkEvent struct {
	ID          string     `json:"id"`
	Type        EventType  `json:"type"`
	AffectedIDs []string   `json:"affectedExchanges"`
	StartTime   time.Time  `json:"startTime"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	Severity    Severity   `json:"severity"`
	Description string     `json:"description"`
}

// Affects reports whether id is in the affected set.
func (e NetworkEvent) Affects(id string) bool {
	for _, a := range e.AffectedIDs {
		if a == id {
			return true
		}
	}
	return false
}

// Snapshot is one internally consistent set of records generated at a single
// instant. Skipped counts entities left out because they could not be used.
type Snapshot struct {
	ID          string          `json:"id"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Records     []LatencyRecord `json:"records"`
	Skipped     int             `json:"skipped"`
	Errors      []string        `json:"errors,omitempty"`
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Table names used when writing to GreptimeDB. Each can be overridden through
// the environment.
var (
	LatencyTableName = envOr("GREPTIMEDB_LATENCY_TABLE", "exchange_latency")
	HistoryTableName = envOr("GREPTIMEDB_HISTORY_TABLE", "exchange_latency_history")
	EventTableName   = envOr("GREPTIMEDB_EVENT_TABLE", "network_events")
)

func (LatencyRecord) TableName() string   { return LatencyTableName }
func (HistoricalPoint) TableName() string { return HistoryTableName }
func (NetworkEvent) TableName() string    { return EventTableName }

// Float returns a pointer to v, for the optional record fields.
func Float(v float64) *float64 { return &v }
