package events

import (
	"time"

	"exchange-latency-sim/internal/telemetry"
)

// Active reports whether e covers t. Both bounds are inclusive.
func Active(e telemetry.NetworkEvent, t time.Time) bool {
	if t.Before(e.StartTime) {
		return false
	}
	return e.EndTime == nil || !t.After(*e.EndTime)
}

// Factor is the latency multiplier of e, ignoring time and membership.
func Factor(e telemetry.NetworkEvent) float64 {
	switch e.Type {
	case telemetry.EventCongestion:
		switch e.Severity {
		case telemetry.SeverityHigh:
			return 2.0
		case telemetry.SeverityMedium:
			return 1.5
		default:
			return 1.2
		}
	case telemetry.EventMaintenance:
		switch e.Severity {
		case telemetry.SeverityHigh:
			return 3.0
		case telemetry.SeverityMedium:
			return 2.0
		default:
			return 1.5
		}
	case telemetry.EventOutage:
		return 5.0
	}
	return 1.0
}

// Multiplier returns Factor(e) when e is active at t and affects either
// endpoint of the pair, otherwise 1.
func Multiplier(e telemetry.NetworkEvent, from, to string, t time.Time) float64 {
	if !Active(e, t) {
		return 1.0
	}
	if !e.Affects(from) && !e.Affects(to) {
		return 1.0
	}
	return Factor(e)
}

// Combined multiplies the multipliers of every event.
func Combined(evs []telemetry.NetworkEvent, from, to string, t time.Time) float64 {
	m := 1.0
	for _, e := range evs {
		m *= Multiplier(e, from, to, t)
	}
	return m
}

// ActiveAt filters the events active at t.
func ActiveAt(evs []telemetry.NetworkEvent, t time.Time) []telemetry.NetworkEvent {
	var out []telemetry.NetworkEvent
	for _, e := range evs {
		if Active(e, t) {
			out = append(out, e)
		}
	}
	return out
}

// Index groups events by affected entity for constant time lookup.
type Index struct {
	byEntity map[string][]int
	events   []telemetry.NetworkEvent
}

// NewIndex builds an index over evs.
func NewIndex(evs []telemetry.NetworkEvent) *Index {
	idx := &Index{byEntity: make(map[string][]int), events: evs}
	for i, e := range evs {
		for _, id := range e.AffectedIDs {
			idx.byEntity[id] = append(idx.byEntity[id], i)
		}
	}
	return idx
}

// Multiplier matches Combined over the indexed events. An event affecting
// both endpoints is applied once.
func (idx *Index) Multiplier(from, to string, t time.Time) float64 {
	m := 1.0
	seen := make(map[int]struct{})
	for _, id := range []string{from, to} {
		for _, i := range idx.byEntity[id] {
			if _, ok := seen[i]; ok {
				continue
			}
			seen[i] = struct{}{}
			if Active(idx.events[i], t) {
				m *= Factor(idx.events[i])
			}
		}
	}
	return m
}
