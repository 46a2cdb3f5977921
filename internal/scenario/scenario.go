package scenario

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"exchange-latency-sim/internal/events"
	"exchange-latency-sim/internal/telemetry"
)

// Trigger event types understood by Runner.
const (
	EventTicks       = "ticks"
	EventTimeElapsed = "time_elapsed"
)

// Scenario is a named preset: the exchanges to simulate, the pairs to chart
// and an ordered list of incident phases.
type Scenario struct {
	Name        string   `yaml:"name,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Exchanges   []string `yaml:"exchanges,omitempty"`
	Pairs       []string `yaml:"pairs,omitempty"`
	Phases      []Phase  `yaml:"phases,omitempty"`
}

// Phase is a stage of the scenario. Its incidents are active while the
// phase is current.
type Phase struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Incidents   []Incident `yaml:"incidents,omitempty"`
	Triggers    []Trigger  `yaml:"triggers,omitempty"`
}

// Incident declares a network event injected during a phase.
type Incident struct {
	Type     telemetry.EventType `yaml:"type"`
	Severity telemetry.Severity  `yaml:"severity"`
	Targets  []string            `yaml:"targets"`
}

// Trigger moves the scenario to another phase once an event reaches Value.
type Trigger struct {
	Event string `yaml:"event"`
	Value int    `yaml:"value"`
	Next  string `yaml:"next"`
}

// Event represents a runtime occurrence that may advance the scenario.
type Event struct {
	Type  string
	Value int
}

// Load reads a YAML scenario definition from disk.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return &s, nil
}

// Phase returns the phase called name.
func (s *Scenario) Phase(name string) (Phase, bool) {
	for _, p := range s.Phases {
		if p.Name == name {
			return p, true
		}
	}
	return Phase{}, false
}

// NextPhase returns the name of the next phase given the current phase and event.
// If no trigger matches, ok will be false.
func (s *Scenario) NextPhase(current string, ev Event) (next string, ok bool) {
	p, found := s.Phase(current)
	if !found {
		return "", false
	}
	for _, tr := range p.Triggers {
		if tr.Event == ev.Type && ev.Value >= tr.Value {
			return tr.Next, true
		}
	}
	return "", false
}

// Validate checks incident kinds, trigger targets and, when known is non-nil,
// that every referenced exchange id exists.
func (s *Scenario) Validate(known func(id string) bool) error {
	check := func(where, id string) error {
		if known != nil && !known(id) {
			return fmt.Errorf("scenario %q: %s references unknown exchange %q", s.Name, where, id)
		}
		return nil
	}
	for _, id := range s.Exchanges {
		if err := check("exchanges", id); err != nil {
			return err
		}
	}
	seen := map[string]bool{}
	for _, p := range s.Phases {
		if p.Name == "" {
			return fmt.Errorf("scenario %q: phase without a name", s.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("scenario %q: duplicate phase %q", s.Name, p.Name)
		}
		seen[p.Name] = true
		for _, inc := range p.Incidents {
			if !events.ValidType(inc.Type) {
				return fmt.Errorf("scenario %q phase %q: unknown incident type %q", s.Name, p.Name, inc.Type)
			}
			if !events.ValidSeverity(inc.Severity) {
				return fmt.Errorf("scenario %q phase %q: unknown severity %q", s.Name, p.Name, inc.Severity)
			}
			if len(inc.Targets) == 0 {
				return fmt.Errorf("scenario %q phase %q: incident without targets", s.Name, p.Name)
			}
			for _, id := range inc.Targets {
				if err := check("phase "+p.Name, id); err != nil {
					return err
				}
			}
		}
	}
	for _, p := range s.Phases {
		for _, tr := range p.Triggers {
			if !seen[tr.Next] {
				return fmt.Errorf("scenario %q phase %q: trigger to unknown phase %q", s.Name, p.Name, tr.Next)
			}
			if tr.Event != EventTicks && tr.Event != EventTimeElapsed {
				return fmt.Errorf("scenario %q phase %q: unknown trigger event %q", s.Name, p.Name, tr.Event)
			}
		}
	}
	return nil
}

// Events materialises the phase incidents as open ended network events
// starting at now.
func (p Phase) Events(now time.Time) []telemetry.NetworkEvent {
	out := make([]telemetry.NetworkEvent, 0, len(p.Incidents))
	for i, inc := range p.Incidents {
		id := fmt.Sprintf("scenario-%s-%d", p.Name, i)
		out = append(out, events.Ongoing(id, inc.Type, inc.Severity, inc.Targets, now))
	}
	return out
}
