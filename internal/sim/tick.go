package sim

import (
	"context"

	"exchange-latency-sim/internal/logging"
	"exchange-latency-sim/internal/telemetry"
)

// Run subscribes to the stream and writes snapshots until the context is
// done. A snapshot that arrives while the previous one is still being written
// replaces any snapshot already waiting.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting simulator", "tick_interval", s.stream.Interval())

	pending := make(chan telemetry.Snapshot, 1)
	unsubscribe := s.stream.Subscribe(func(snap telemetry.Snapshot) {
		for {
			select {
			case pending <- snap:
				return
			default:
			}
			select {
			case <-pending:
			default:
			}
		}
	})
	defer unsubscribe()

	for {
		select {
		case snap := <-pending:
			s.tick(ctx, snap)
		case <-ctx.Done():
			log.Info("stopping simulator")
			return
		}
	}
}

// tick writes one snapshot, then advances the scenario and writes the event
// list when it changed.
func (s *Simulator) tick(ctx context.Context, snap telemetry.Snapshot) {
	log := logging.FromContext(ctx)

	s.mu.Lock()
	s.latest = snap
	s.haveLatest = true
	s.processed++
	phaseChanged := s.runner != nil && s.runner.Tick(s.now())
	if phaseChanged {
		s.applyPhaseLocked()
		log.Info("scenario phase changed", "scenario", s.runner.Scenario().Name, "phase", s.runner.Current())
	}
	s.mu.Unlock()

	s.metrics.ObserveRecords(snap.Records)
	if snap.Skipped > 0 {
		log.Warn("exchanges skipped", "snapshot_id", snap.ID, "count", snap.Skipped, "errors", snap.Errors)
		s.metrics.AddValidationErrors("exchange", snap.Skipped)
	}

	if s.writer != nil {
		if err := writeRecords(s.writer, snap.Records); err != nil {
			log.Error("write failed", "snapshot_id", snap.ID, "err", err)
			s.metrics.WriteError("records")
		}
	}

	if s.eventWriter == nil {
		return
	}
	evs := s.gen.Events()
	key := eventsKey(evs)
	s.mu.Lock()
	changed := key != s.eventsKey
	s.eventsKey = key
	s.mu.Unlock()
	if !changed || len(evs) == 0 {
		return
	}
	if err := writeEvents(s.eventWriter, evs); err != nil {
		log.Error("event write failed", "err", err)
		s.metrics.WriteError("events")
	}
}
