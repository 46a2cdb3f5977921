package telemetry

import (
	"fmt"
	"math"
	"strconv"
)

// FormatLatency renders milliseconds as "45ms" below one second and "1.2s"
// above.
func FormatLatency(ms float64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", int(math.Round(ms)))
	}
	return fmt.Sprintf("%.1fs", ms/1000)
}

// FormatPercentage renders v with the given number of decimals and a % sign.
func FormatPercentage(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64) + "%"
}

// FormatNumber abbreviates large values with K and M suffixes.
func FormatNumber(v float64) string {
	switch {
	case math.Abs(v) >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case math.Abs(v) >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}
