package latency

import (
	"fmt"

	"exchange-latency-sim/internal/telemetry"
)

// Thresholds are the upper bounds, in ms, of the low, medium and high buckets.
type Thresholds struct {
	Low    float64 `yaml:"low_ms" json:"lowMs"`
	Medium float64 `yaml:"medium_ms" json:"mediumMs"`
	High   float64 `yaml:"high_ms" json:"highMs"`
}

// DefaultThresholds returns 50/150/300ms.
func DefaultThresholds() Thresholds {
	return Thresholds{Low: 50, Medium: 150, High: 300}
}

// Validate rejects non-positive or non-ascending thresholds.
func (t Thresholds) Validate() error {
	if t.Low <= 0 || t.Medium <= t.Low || t.High <= t.Medium {
		return fmt.Errorf("latency thresholds must be positive and ascending, got %v/%v/%v", t.Low, t.Medium, t.High)
	}
	return nil
}

// Bucket classifies latency into low, medium or high.
func (t Thresholds) Bucket(ms float64) telemetry.LatencyStatus {
	switch {
	case ms < t.Low:
		return telemetry.StatusLow
	case ms < t.Medium:
		return telemetry.StatusMedium
	default:
		return telemetry.StatusHigh
	}
}

// Level is the four way variant of Bucket that separates critical latency.
func (t Thresholds) Level(ms float64) telemetry.LatencyStatus {
	switch {
	case ms < t.Low:
		return telemetry.StatusLow
	case ms < t.Medium:
		return telemetry.StatusMedium
	case ms < t.High:
		return telemetry.StatusHigh
	default:
		return telemetry.StatusCritical
	}
}
