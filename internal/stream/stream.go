// Package stream broadcasts periodically regenerated snapshots to
// subscribers.
package stream

import (
	"sync"
	"sync/atomic"
	"time"

	"exchange-latency-sim/internal/catalog"
	"exchange-latency-sim/internal/telemetry"
)

// DefaultInterval is the tick between broadcasts.
const DefaultInterval = 5 * time.Second

// State is the lifecycle state of a Stream.
type State string

const (
	StateIdle      State = "idle"
	StateStreaming State = "streaming"
)

// Generator produces snapshots for a set of sources.
type Generator interface {
	Generate(exchanges []catalog.Exchange, regions []catalog.CloudRegion) telemetry.Snapshot
}

// MetricsRecorder receives stream measurements. A nil recorder is allowed.
type MetricsRecorder interface {
	ObserveSnapshot(records, skipped int, took time.Duration)
	SetSubscribers(n int)
}

// Callback receives each broadcast snapshot.
type Callback func(telemetry.Snapshot)

type subscriber struct {
	id     uint64
	fn     Callback
	active atomic.Bool
}

// Stream is a lazily started subscription broker. The first subscriber starts
// the ticker; removing the last one stops it.
type Stream struct {
	gen      Generator
	interval time.Duration
	metrics  MetricsRecorder

	// bmu serialises broadcasts so callbacks never run concurrently.
	bmu sync.Mutex

	mu        sync.Mutex
	subs      []*subscriber
	nextID    uint64
	exchanges []catalog.Exchange
	regions   []catalog.CloudRegion
	stop      chan struct{}
	done      chan struct{}
	latest    *telemetry.Snapshot
	ticks     uint64
}

// New creates an idle stream. A non-positive interval uses DefaultInterval.
func New(gen Generator, exchanges []catalog.Exchange, regions []catalog.CloudRegion, interval time.Duration) *Stream {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Stream{
		gen:       gen,
		interval:  interval,
		exchanges: exchanges,
		regions:   regions,
	}
}

// SetMetrics attaches a metrics recorder.
func (s *Stream) SetMetrics(m MetricsRecorder) {
	s.mu.Lock()
	s.metrics = m
	s.mu.Unlock()
}

// Interval returns the broadcast interval.
func (s *Stream) Interval() time.Duration { return s.interval }

// Subscribe registers fn. When fn is the first subscriber the stream starts
// and fn receives a snapshot before Subscribe returns. The returned function
// unsubscribes; calling it more than once has no further effect. Broadcasts
// are serialised, so a callback never overlaps another callback and must not
// restart an idle stream from inside itself.
func (s *Stream) Subscribe(fn Callback) (unsubscribe func()) {
	sub := &subscriber{fn: fn}
	sub.active.Store(true)

	s.mu.Lock()
	s.nextID++
	sub.id = s.nextID
	s.subs = append(s.subs, sub)
	first := s.stop == nil
	stop := s.stop
	if first {
		stop = make(chan struct{})
		s.stop = stop
		s.done = make(chan struct{})
		go s.loop(stop, s.done)
	}
	s.recordSubscribers()
	s.mu.Unlock()

	if first {
		s.broadcast(stop)
	}

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(sub) })
	}
}

func (s *Stream) remove(sub *subscriber) {
	sub.active.Store(false)

	s.mu.Lock()
	next := make([]*subscriber, 0, len(s.subs))
	for _, o := range s.subs {
		if o != sub {
			next = append(next, o)
		}
	}
	s.subs = next
	s.recordSubscribers()
	var stop chan struct{}
	if len(s.subs) == 0 && s.stop != nil {
		stop = s.stop
		s.stop = nil
		s.done = nil
	}
	s.mu.Unlock()

	if stop != nil {
		close(stop)
	}
}

func (s *Stream) recordSubscribers() {
	if s.metrics != nil {
		s.metrics.SetSubscribers(len(s.subs))
	}
}

func (s *Stream) loop(stop chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			select {
			case <-stop:
				return
			default:
			}
			s.broadcast(stop)
		case <-stop:
			return
		}
	}
}

// broadcast generates one snapshot and hands it to a copy of the subscriber
// list, in registration order. stop identifies the ticker run the broadcast
// belongs to; once that run has been stopped nothing is delivered.
func (s *Stream) broadcast(stop chan struct{}) {
	s.bmu.Lock()
	defer s.bmu.Unlock()

	s.mu.Lock()
	if s.stop != stop || len(s.subs) == 0 {
		s.mu.Unlock()
		return
	}
	exs, rgs := s.exchanges, s.regions
	metrics := s.metrics
	s.mu.Unlock()

	start := time.Now()
	snap := s.gen.Generate(exs, rgs)
	took := time.Since(start)

	s.mu.Lock()
	if s.stop != stop {
		s.mu.Unlock()
		return
	}
	subs := append([]*subscriber(nil), s.subs...)
	s.latest = &snap
	s.ticks++
	s.mu.Unlock()

	if metrics != nil {
		metrics.ObserveSnapshot(len(snap.Records), snap.Skipped, took)
	}
	for _, sub := range subs {
		if sub.active.Load() {
			sub.fn(snap)
		}
	}
}

// UpdateSources replaces the exchanges and regions used by later broadcasts.
func (s *Stream) UpdateSources(exchanges []catalog.Exchange, regions []catalog.CloudRegion) {
	s.mu.Lock()
	s.exchanges = exchanges
	s.regions = regions
	s.mu.Unlock()
}

// Sources returns the current exchanges and regions.
func (s *Stream) Sources() ([]catalog.Exchange, []catalog.CloudRegion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exchanges, s.regions
}

// Latest returns the most recent broadcast snapshot.
func (s *Stream) Latest() (telemetry.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return telemetry.Snapshot{}, false
	}
	return *s.latest, true
}

// State reports whether the ticker is running.
func (s *Stream) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return StateIdle
	}
	return StateStreaming
}

// SubscriberCount returns the number of registered subscribers.
func (s *Stream) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Broadcasts returns how many snapshots have been broadcast.
func (s *Stream) Broadcasts() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Close drops every subscriber and waits for the ticker goroutine to exit.
func (s *Stream) Close() {
	s.mu.Lock()
	for _, sub := range s.subs {
		sub.active.Store(false)
	}
	s.subs = nil
	s.recordSubscribers()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}
