package telemetry

import (
	"fmt"
	"math"
	"strings"
)

// ValidateRecord checks a latency record and returns every field error found.
func ValidateRecord(r LatencyRecord) []string {
	var errs []string
	if strings.TrimSpace(r.From) == "" {
		errs = append(errs, `Latency data "from" field is required and must be a string`)
	}
	if strings.TrimSpace(r.To) == "" {
		errs = append(errs, `Latency data "to" field is required and must be a string`)
	}
	if math.IsNaN(r.Latency) || r.Latency < 0 {
		errs = append(errs, "Latency value must be a non-negative number")
	}
	if r.Timestamp.IsZero() {
		errs = append(errs, "Latency timestamp must be a valid Date object")
	}
	switch r.Status {
	case StatusLow, StatusMedium, StatusHigh:
	default:
		errs = append(errs, "Latency status must be one of: low, medium, high")
	}
	if r.PacketLoss != nil && (math.IsNaN(*r.PacketLoss) || *r.PacketLoss < 0 || *r.PacketLoss > 100) {
		errs = append(errs, "Packet loss must be a number between 0 and 100")
	}
	if r.Jitter != nil && (math.IsNaN(*r.Jitter) || *r.Jitter < 0) {
		errs = append(errs, "Jitter must be a non-negative number")
	}
	for i, c := range r.Route {
		if !c.Valid() {
			errs = append(errs, fmt.Sprintf("Route coordinate at index %d is invalid", i))
		}
	}
	return errs
}
