// Package history generates synthetic latency time series with daily and
// weekly seasonality, random spikes and network incidents.
package history

import (
	"fmt"
	"math"
	"sort"
	"time"

	"exchange-latency-sim/internal/events"
	"exchange-latency-sim/internal/latency"
	"exchange-latency-sim/internal/telemetry"
)

const (
	// DefaultDistanceKm stands in for the real endpoint distance when deriving
	// packet loss and jitter from a pair key alone.
	DefaultDistanceKm = 5000.0

	baseLatencyMin    = 50.0
	baseLatencySpread = 200.0
	dailyAmplitude    = 0.2
	weekdayFactor     = 1.1
	weekendFactor     = 0.9
	randomMin         = 0.8
	randomSpread      = 0.4
	spikeChance       = 0.05
	spikeMin          = 1.5
	volumeMagnitude   = 1e6
)

// Resolver splits a pair key into the two entity ids it names.
type Resolver interface {
	SplitPair(key string) (from, to string, ok bool)
}

// Diagnostics reports pairs skipped during generation.
type Diagnostics struct {
	Skipped []string `json:"skipped,omitempty"`
}

// Generator produces historical series.
type Generator struct {
	rand       latency.Source
	now        func() time.Time
	loc        *time.Location
	ranges     Ranges
	distanceKm float64
	resolver   Resolver
	events     []telemetry.NetworkEvent
}

// Option customises a Generator.
type Option func(*Generator)

// WithRanges overrides the time range table.
func WithRanges(r Ranges) Option { return func(g *Generator) { g.ranges = r } }

// WithDistance overrides the assumed endpoint distance.
func WithDistance(km float64) Option {
	return func(g *Generator) {
		if km > 0 {
			g.distanceKm = km
		}
	}
}

// WithResolver makes the generator validate pair keys and apply events to
// the resolved endpoints.
func WithResolver(r Resolver) Option { return func(g *Generator) { g.resolver = r } }

// WithEvents sets the incidents applied to resolved pairs.
func WithEvents(evs []telemetry.NetworkEvent) Option {
	return func(g *Generator) { g.events = evs }
}

// WithLocation sets the time zone used for hour-of-day and weekday effects.
func WithLocation(loc *time.Location) Option { return func(g *Generator) { g.loc = loc } }

// WithClock overrides the current time source.
func WithClock(now func() time.Time) Option { return func(g *Generator) { g.now = now } }

// NewGenerator creates a series generator drawing from rng.
func NewGenerator(rng latency.Source, opts ...Option) *Generator {
	g := &Generator{
		rand:       rng,
		now:        time.Now,
		loc:        time.UTC,
		ranges:     DefaultRanges(),
		distanceKm: DefaultDistanceKm,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Ranges returns the generator's time range table.
func (g *Generator) Ranges() Ranges { return g.ranges }

// GenerateRange is Generate with the range's documented point count.
func (g *Generator) GenerateRange(pairKeys []string, tr TimeRange) ([]telemetry.HistoricalPoint, Diagnostics, error) {
	spec, err := g.ranges.Lookup(tr)
	if err != nil {
		return nil, Diagnostics{}, err
	}
	return g.Generate(pairKeys, tr, spec.Points)
}

// Generate builds pointCount points per pair spanning [now-range, now]. The
// result is ordered by timestamp; points sharing a timestamp keep pair order.
func (g *Generator) Generate(pairKeys []string, tr TimeRange, pointCount int) ([]telemetry.HistoricalPoint, Diagnostics, error) {
	spec, err := g.ranges.Lookup(tr)
	if err != nil {
		return nil, Diagnostics{}, err
	}
	if pointCount < 1 {
		return nil, Diagnostics{}, fmt.Errorf("%w, got %d", ErrPointCount, pointCount)
	}
	if spec.Duration <= 0 {
		return nil, Diagnostics{}, fmt.Errorf("time range %q has no duration", tr)
	}

	now := g.now()
	stamps := timestamps(now, spec.Duration, pointCount)

	var diag Diagnostics
	out := make([]telemetry.HistoricalPoint, 0, len(pairKeys)*pointCount)
	for _, key := range pairKeys {
		from, to, ok := g.resolve(key)
		if !ok {
			diag.Skipped = append(diag.Skipped, key)
			continue
		}
		out = append(out, g.series(key, from, to, stamps)...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, diag, nil
}

func (g *Generator) resolve(key string) (string, string, bool) {
	if key == "" {
		return "", "", false
	}
	if g.resolver == nil {
		return "", "", true
	}
	return g.resolver.SplitPair(key)
}

// timestamps spaces n instants evenly over [now-d, now]; a single instant
// sits at now.
func timestamps(now time.Time, d time.Duration, n int) []time.Time {
	out := make([]time.Time, n)
	if n == 1 {
		out[0] = now
		return out
	}
	start := now.Add(-d)
	step := float64(d) / float64(n-1)
	for i := range out {
		out[i] = start.Add(time.Duration(math.Round(step * float64(i))))
	}
	out[n-1] = now
	return out
}

func (g *Generator) series(key, from, to string, stamps []time.Time) []telemetry.HistoricalPoint {
	base := baseLatencyMin + g.rand.Float64()*baseLatencySpread
	points := make([]telemetry.HistoricalPoint, len(stamps))
	for i, ts := range stamps {
		local := ts.In(g.loc)
		daily := DailyMultiplier(local.Hour())
		weekly := WeeklyMultiplier(local.Weekday())
		random := randomMin + g.rand.Float64()*randomSpread
		spike := 1.0
		if g.rand.Float64() < spikeChance {
			spike = spikeMin + g.rand.Float64()
		}
		incident := 1.0
		if from != "" && len(g.events) > 0 {
			incident = events.Combined(g.events, from, to, ts)
		}
		lat := math.Max(latency.MinLatencyMs, math.Round(base*daily*weekly*random*spike*incident))
		vol := g.rand.Float64() * volumeMagnitude * daily * weekly

		points[i] = telemetry.HistoricalPoint{
			Timestamp:  ts,
			PairKey:    key,
			Latency:    lat,
			PacketLoss: latency.PacketLoss(lat, g.distanceKm, g.rand),
			Jitter:     latency.Jitter(lat, g.rand),
			Volume:     telemetry.Float(vol),
		}
	}
	return points
}

// DailyMultiplier is the sinusoidal hour-of-day factor, peaking at 12:00.
func DailyMultiplier(hour int) float64 {
	return 1 + math.Sin(float64(hour-6)*math.Pi/12)*dailyAmplitude
}

// WeeklyMultiplier is 1.1 on weekdays and 0.9 at weekends.
func WeeklyMultiplier(d time.Weekday) float64 {
	if d == time.Saturday || d == time.Sunday {
		return weekendFactor
	}
	return weekdayFactor
}

// PopularPairs are the default pairs charted when none are requested.
func PopularPairs() []telemetry.Pair {
	return []telemetry.Pair{
		{From: "binance-singapore", To: "coinbase-sanfrancisco"},
		{From: "okx-hongkong", To: "kraken-london"},
		{From: "bybit-tokyo", To: "deribit-amsterdam"},
		{From: "binance-singapore", To: "okx-hongkong"},
		{From: "coinbase-newyork", To: "bitfinex-london"},
	}
}
