// Package latency maps great-circle distance to simulated network latency,
// packet loss and jitter.
package latency

import "math"

// Source is the randomness the model draws from. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

const (
	// km covered per ms of propagation delay
	kmPerMs = 150.0

	// MinLatencyMs is the floor applied to every latency value.
	MinLatencyMs = 1.0

	routingMin       = 0.2
	routingSpread    = 0.3
	congestionSpread = 0.3
	processingMinMs  = 1.0
	processingMaxMs  = 5.0
	varianceFraction = 0.1

	lossPer10000Km    = 0.1
	lossLatencyOnset  = 200.0
	lossLatencyScale  = 1000.0
	lossNoise         = 0.2
	MaxPacketLoss     = 5.0
	jitterMinFraction = 0.05
	jitterSpread      = 0.1
	jitterSpikeChance = 0.1
	jitterSpikeMaxMs  = 10.0
	minJitterMs       = 0.1
)

// BaseFromDistance is the deterministic propagation latency for km, never
// below MinLatencyMs.
func BaseFromDistance(km float64) float64 {
	if km < 0 || math.IsNaN(km) {
		km = 0
	}
	return math.Max(MinLatencyMs, km/kmPerMs)
}

// ApplyStochastic adds routing overhead (+20-50%), congestion (0-30%), a 1-5ms
// processing delay and a ±5% variance term to base.
func ApplyStochastic(base float64, rng Source) float64 {
	routing := base * (routingMin + rng.Float64()*routingSpread)
	congestion := base * rng.Float64() * congestionSpread
	processing := processingMinMs + rng.Float64()*(processingMaxMs-processingMinMs)

	total := base + routing + congestion + processing
	variance := total * varianceFraction * (rng.Float64() - 0.5)
	return math.Max(MinLatencyMs, total+variance)
}

// FromDistance is ApplyStochastic over BaseFromDistance.
func FromDistance(km float64, rng Source) float64 {
	return ApplyStochastic(BaseFromDistance(km), rng)
}

// PacketLoss estimates a loss percentage in [0, MaxPacketLoss], rounded to
// three decimals.
func PacketLoss(latencyMs, km float64, rng Source) float64 {
	loss := math.Max(0, km) / 10000 * lossPer10000Km
	if latencyMs > lossLatencyOnset {
		loss += (latencyMs - lossLatencyOnset) / lossLatencyScale
	}
	loss += rng.Float64() * lossNoise
	loss = math.Max(0, math.Min(MaxPacketLoss, loss))
	return roundTo(loss, 3)
}

// Jitter is 5-15% of latency with an occasional spike of up to +10ms, rounded
// to two decimals.
func Jitter(latencyMs float64, rng Source) float64 {
	j := math.Max(0, latencyMs) * (jitterMinFraction + rng.Float64()*jitterSpread)
	if rng.Float64() < jitterSpikeChance {
		j += rng.Float64() * jitterSpikeMaxMs
	}
	return roundTo(math.Max(minJitterMs, j), 2)
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
