// Package events simulates network incidents and the latency multipliers they
// impose on affected entities.
package events

import (
	"fmt"
	"sort"
	"time"

	"exchange-latency-sim/internal/latency"
	"exchange-latency-sim/internal/telemetry"
)

// DefaultCount and DefaultLookback size a generated batch.
const (
	DefaultCount    = 10
	DefaultLookback = 7 * 24 * time.Hour
	maxAffected     = 3
)

var (
	eventTypes = []telemetry.EventType{telemetry.EventCongestion, telemetry.EventMaintenance, telemetry.EventOutage}
	severities = []telemetry.Severity{telemetry.SeverityLow, telemetry.SeverityMedium, telemetry.SeverityHigh}

	baseDuration = map[telemetry.EventType]time.Duration{
		telemetry.EventCongestion:  30 * time.Minute,
		telemetry.EventMaintenance: 2 * time.Hour,
		telemetry.EventOutage:      45 * time.Minute,
	}
	severityScale = map[telemetry.Severity]float64{
		telemetry.SeverityLow:    0.5,
		telemetry.SeverityMedium: 1,
		telemetry.SeverityHigh:   2,
	}
)

// Generator produces batches of past network events.
type Generator struct {
	rand     latency.Source
	now      func() time.Time
	lookback time.Duration
}

// NewGenerator creates a generator drawing from rng. A non-positive lookback
// falls back to DefaultLookback.
func NewGenerator(rng latency.Source, lookback time.Duration) *Generator {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &Generator{rand: rng, now: time.Now, lookback: lookback}
}

// pick maps a draw onto [0, n).
func (g *Generator) pick(n int) int {
	i := int(g.rand.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Generate returns count events affecting random subsets of entityIDs, newest
// first. It returns nil when there is nothing to affect or count < 1.
func (g *Generator) Generate(entityIDs []string, count int) []telemetry.NetworkEvent {
	if len(entityIDs) == 0 || count < 1 {
		return nil
	}
	now := g.now()
	out := make([]telemetry.NetworkEvent, 0, count)
	for i := 0; i < count; i++ {
		start := now.Add(-time.Duration(g.rand.Float64() * float64(g.lookback)))
		typ := eventTypes[g.pick(len(eventTypes))]
		sev := severities[g.pick(len(severities))]
		affected := g.affected(entityIDs)
		end := start.Add(Duration(typ, sev))
		out = append(out, telemetry.NetworkEvent{
			ID:          fmt.Sprintf("event-%d", i),
			Type:        typ,
			AffectedIDs: affected,
			StartTime:   start,
			EndTime:     &end,
			Severity:    sev,
			Description: Describe(typ, len(affected)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out
}

// affected draws between one and three distinct ids.
func (g *Generator) affected(ids []string) []string {
	n := int(g.rand.Float64()*maxAffected) + 1
	if n > maxAffected {
		n = maxAffected
	}
	if n > len(ids) {
		n = len(ids)
	}
	pool := append([]string(nil), ids...)
	out := make([]string, 0, n)
	for len(out) < n {
		j := g.pick(len(pool))
		out = append(out, pool[j])
		pool = append(pool[:j], pool[j+1:]...)
	}
	return out
}

// Duration is the nominal length of an event of the given type and severity.
func Duration(typ telemetry.EventType, sev telemetry.Severity) time.Duration {
	scale, ok := severityScale[sev]
	if !ok {
		scale = 1
	}
	return time.Duration(float64(baseDuration[typ]) * scale)
}

// Describe renders the human readable description of an event.
func Describe(typ telemetry.EventType, affected int) string {
	switch typ {
	case telemetry.EventCongestion:
		return fmt.Sprintf("Network congestion detected affecting %d exchange(s)", affected)
	case telemetry.EventMaintenance:
		return fmt.Sprintf("Scheduled maintenance window for %d exchange(s)", affected)
	case telemetry.EventOutage:
		return fmt.Sprintf("Service outage reported for %d exchange(s)", affected)
	}
	return fmt.Sprintf("Network event affecting %d exchange(s)", affected)
}

// Ongoing builds an open ended event starting at now.
func Ongoing(id string, typ telemetry.EventType, sev telemetry.Severity, ids []string, now time.Time) telemetry.NetworkEvent {
	return telemetry.NetworkEvent{
		ID:          id,
		Type:        typ,
		AffectedIDs: append([]string(nil), ids...),
		StartTime:   now,
		Severity:    sev,
		Description: Describe(typ, len(ids)),
	}
}

// ValidType reports whether typ is a known event type.
func ValidType(typ telemetry.EventType) bool {
	_, ok := baseDuration[typ]
	return ok
}

// ValidSeverity reports whether sev is a known severity.
func ValidSeverity(sev telemetry.Severity) bool {
	_, ok := severityScale[sev]
	return ok
}

// SetClock overrides the time source used for event start times.
func (g *Generator) SetClock(now func() time.Time) { g.now = now }
