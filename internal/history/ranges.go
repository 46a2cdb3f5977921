package history

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// TimeRange names a supported history window.
type TimeRange string

const (
	Range1h  TimeRange = "1h"
	Range24h TimeRange = "24h"
	Range7d  TimeRange = "7d"
	Range30d TimeRange = "30d"
)

// RangeSpec is the duration covered by a range and its documented point count.
type RangeSpec struct {
	Duration time.Duration `yaml:"duration" json:"duration"`
	Points   int           `yaml:"points" json:"points"`
}

var (
	// ErrUnknownRange is returned for a time range outside the configured set.
	ErrUnknownRange = errors.New("unknown time range")
	// ErrPointCount is returned when fewer than one point is requested.
	ErrPointCount = errors.New("point count must be at least 1")
)

// Ranges maps each time range to its spec.
type Ranges map[TimeRange]RangeSpec

// DefaultRanges returns 1h/60, 24h/144, 7d/168 and 30d/720.
func DefaultRanges() Ranges {
	return Ranges{
		Range1h:  {Duration: time.Hour, Points: 60},
		Range24h: {Duration: 24 * time.Hour, Points: 144},
		Range7d:  {Duration: 7 * 24 * time.Hour, Points: 168},
		Range30d: {Duration: 30 * 24 * time.Hour, Points: 720},
	}
}

// Lookup returns the RangeSpec for tr or ErrUnknownRange.
func (r Ranges) Lookup(tr TimeRange) (RangeSpec, error) {
	spec, ok := r[tr]
	if !ok {
		return RangeSpec{}, fmt.Errorf("%w %q (want one of %v)", ErrUnknownRange, tr, r.Names())
	}
	return spec, nil
}

// Names lists the configured ranges ordered by duration.
func (r Ranges) Names() []TimeRange {
	out := make([]TimeRange, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return r[out[i]].Duration < r[out[j]].Duration })
	return out
}

// Validate checks that every range has a positive duration and point count.
func (r Ranges) Validate() error {
	for name, spec := range r {
		if spec.Duration <= 0 {
			return fmt.Errorf("time range %q: duration must be positive", name)
		}
		if spec.Points < 1 {
			return fmt.Errorf("time range %q: %w", name, ErrPointCount)
		}
	}
	return nil
}
