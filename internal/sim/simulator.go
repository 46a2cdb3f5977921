// Simulator forwarding live snapshots and incidents to writers
package sim

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"exchange-latency-sim/internal/events"
	"exchange-latency-sim/internal/observability"
	"exchange-latency-sim/internal/scenario"
	"exchange-latency-sim/internal/snapshot"
	"exchange-latency-sim/internal/stream"
	"exchange-latency-sim/internal/telemetry"
)

// ErrNoTargets is returned when an incident names no affected entities.
var ErrNoTargets = errors.New("incident needs at least one affected exchange")

// Status summarises the simulator for the admin API.
type Status struct {
	State       stream.State `json:"state"`
	Subscribers int          `json:"subscribers"`
	Snapshots   uint64       `json:"snapshots"`
	LastID      string       `json:"lastSnapshotId,omitempty"`
	LastAt      *time.Time   `json:"lastSnapshotAt,omitempty"`
	Records     int          `json:"records"`
	Events      int          `json:"events"`
	Scenario    string       `json:"scenario,omitempty"`
	Phase       string       `json:"phase,omitempty"`
	Interval    string       `json:"interval"`
}

// Simulator subscribes to a stream and writes every snapshot it receives.
// It also owns incident injection and scenario phases, both of which act on
// the snapshot generator's event list.
type Simulator struct {
	gen         *snapshot.Generator
	stream      *stream.Stream
	writer      RecordWriter
	eventWriter EventWriter
	metrics     *observability.Collector
	now         func() time.Time

	mu          sync.Mutex
	latest      telemetry.Snapshot
	haveLatest  bool
	processed   uint64
	runner      *scenario.Runner
	phaseEvents []string
	incidents   int
	eventsKey   string
}

// NewSimulator wires a generator and stream to writers. eventWriter may be nil.
func NewSimulator(gen *snapshot.Generator, st *stream.Stream, writer RecordWriter, eventWriter EventWriter) *Simulator {
	return &Simulator{
		gen:         gen,
		stream:      st,
		writer:      writer,
		eventWriter: eventWriter,
		now:         time.Now,
	}
}

// SetMetrics attaches a metrics collector.
func (s *Simulator) SetMetrics(m *observability.Collector) { s.metrics = m }

// SetScenario starts sc in its first phase and applies that phase's
// incidents.
func (s *Simulator) SetScenario(sc *scenario.Scenario) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runner = scenario.NewRunner(sc, s.now())
	s.applyPhaseLocked()
}

func (s *Simulator) applyPhaseLocked() {
	for _, id := range s.phaseEvents {
		s.gen.RemoveEvent(id)
	}
	s.phaseEvents = nil
	if s.runner == nil {
		return
	}
	for _, e := range s.runner.ActiveEvents() {
		s.gen.AddEvent(e)
		s.phaseEvents = append(s.phaseEvents, e.ID)
	}
}

// Stream returns the stream the simulator consumes.
func (s *Simulator) Stream() *stream.Stream { return s.stream }

// Generator returns the snapshot generator.
func (s *Simulator) Generator() *snapshot.Generator { return s.gen }

// Latest returns the last snapshot processed by the simulator.
func (s *Simulator) Latest() (telemetry.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.haveLatest
}

// Events returns the current incident list.
func (s *Simulator) Events() []telemetry.NetworkEvent { return s.gen.Events() }

// InjectIncident adds an open ended incident starting now.
func (s *Simulator) InjectIncident(typ telemetry.EventType, sev telemetry.Severity, ids []string) (telemetry.NetworkEvent, error) {
	if !events.ValidType(typ) {
		return telemetry.NetworkEvent{}, fmt.Errorf("unknown event type %q", typ)
	}
	if !events.ValidSeverity(sev) {
		return telemetry.NetworkEvent{}, fmt.Errorf("unknown severity %q", sev)
	}
	if len(ids) == 0 {
		return telemetry.NetworkEvent{}, ErrNoTargets
	}
	s.mu.Lock()
	s.incidents++
	id := fmt.Sprintf("incident-%d", s.incidents)
	s.mu.Unlock()

	e := events.Ongoing(id, typ, sev, ids, s.now())
	s.gen.AddEvent(e)
	return e, nil
}

// ResolveIncident removes the incident with the given id.
func (s *Simulator) ResolveIncident(id string) bool { return s.gen.RemoveEvent(id) }

// Status reports the simulator state.
func (s *Simulator) Status() Status {
	s.mu.Lock()
	st := Status{
		Snapshots: s.processed,
		Events:    len(s.gen.Events()),
		Interval:  s.stream.Interval().String(),
	}
	if s.haveLatest {
		at := s.latest.GeneratedAt
		st.LastID = s.latest.ID
		st.LastAt = &at
		st.Records = len(s.latest.Records)
	}
	if s.runner != nil {
		st.Scenario = s.runner.Scenario().Name
		st.Phase = s.runner.Current()
	}
	s.mu.Unlock()
	st.State = s.stream.State()
	st.Subscribers = s.stream.SubscriberCount()
	return st
}

func eventsKey(evs []telemetry.NetworkEvent) string {
	ids := make([]string, len(evs))
	for i, e := range evs {
		ids[i] = e.ID
	}
	return strings.Join(ids, ",")
}
