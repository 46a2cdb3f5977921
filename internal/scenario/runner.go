package scenario

import (
	"time"

	"exchange-latency-sim/internal/telemetry"
)

// Runner walks a scenario's phases as simulation ticks go by.
type Runner struct {
	sc      *Scenario
	current string
	entered time.Time
	ticks   int
}

// NewRunner starts sc in its first phase at now.
func NewRunner(sc *Scenario, now time.Time) *Runner {
	r := &Runner{sc: sc, entered: now}
	if len(sc.Phases) > 0 {
		r.current = sc.Phases[0].Name
	}
	return r
}

// Current returns the active phase name, empty for a scenario without phases.
func (r *Runner) Current() string { return r.current }

// Scenario returns the scenario being run.
func (r *Runner) Scenario() *Scenario { return r.sc }

// Tick records one simulation tick at now and reports whether the phase
// changed. Tick and elapsed-time counters reset on every transition.
func (r *Runner) Tick(now time.Time) bool {
	if r.current == "" {
		return false
	}
	r.ticks++
	elapsed := int(now.Sub(r.entered) / time.Second)
	for _, ev := range []Event{{Type: EventTicks, Value: r.ticks}, {Type: EventTimeElapsed, Value: elapsed}} {
		if next, ok := r.sc.NextPhase(r.current, ev); ok && next != r.current {
			r.current = next
			r.entered = now
			r.ticks = 0
			return true
		}
	}
	return false
}

// ActiveEvents returns the incidents of the active phase as network events
// that started when the phase was entered.
func (r *Runner) ActiveEvents() []telemetry.NetworkEvent {
	p, ok := r.sc.Phase(r.current)
	if !ok {
		return nil
	}
	return p.Events(r.entered)
}
