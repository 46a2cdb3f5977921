// Package snapshot builds all-pairs latency snapshots across exchanges and
// cloud regions.
package snapshot

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"exchange-latency-sim/internal/catalog"
	"exchange-latency-sim/internal/events"
	"exchange-latency-sim/internal/geo"
	"exchange-latency-sim/internal/latency"
	"exchange-latency-sim/internal/telemetry"
)

// Defaults for the snapshot shape.
const (
	DefaultRouteSegments = 10
	DefaultCrossRegionKm = 1000.0
	DefaultReverseSpread = 5.0
)

// Options tune snapshot generation.
type Options struct {
	Thresholds    latency.Thresholds
	RouteSegments int
	CrossRegionKm float64
	// ReverseSpread bounds |reverse - forward| in ms.
	ReverseSpread float64
	EventCount    int
	EventLookback time.Duration
}

// DefaultOptions returns the stock snapshot settings.
func DefaultOptions() Options {
	return Options{
		Thresholds:    latency.DefaultThresholds(),
		RouteSegments: DefaultRouteSegments,
		CrossRegionKm: DefaultCrossRegionKm,
		ReverseSpread: DefaultReverseSpread,
		EventCount:    events.DefaultCount,
		EventLookback: events.DefaultLookback,
	}
}

// Generator produces snapshots. It owns the current incident list and is safe
// for concurrent use.
type Generator struct {
	mu     sync.Mutex
	rand   latency.Source
	opts   Options
	now    func() time.Time
	newID  func() string
	events []telemetry.NetworkEvent
	evGen  *events.Generator
}

// NewGenerator creates a snapshot generator drawing from rng.
func NewGenerator(rng latency.Source, opts Options) *Generator {
	if opts.RouteSegments < 1 {
		opts.RouteSegments = DefaultRouteSegments
	}
	if opts.Thresholds == (latency.Thresholds{}) {
		opts.Thresholds = latency.DefaultThresholds()
	}
	return &Generator{
		rand:  rng,
		opts:  opts,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
		evGen: events.NewGenerator(rng, opts.EventLookback),
	}
}

// Options returns the generator settings.
func (g *Generator) Options() Options { return g.opts }

// Events returns a copy of the current incident list.
func (g *Generator) Events() []telemetry.NetworkEvent {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]telemetry.NetworkEvent(nil), g.events...)
}

// SetEvents replaces the incident list wholesale.
func (g *Generator) SetEvents(evs []telemetry.NetworkEvent) {
	cp := append([]telemetry.NetworkEvent(nil), evs...)
	g.mu.Lock()
	g.events = cp
	g.mu.Unlock()
}

// AddEvent appends e to a fresh copy of the incident list.
func (g *Generator) AddEvent(e telemetry.NetworkEvent) {
	g.mu.Lock()
	defer g.mu.Unlock()
	next := make([]telemetry.NetworkEvent, 0, len(g.events)+1)
	next = append(next, e)
	next = append(next, g.events...)
	g.events = next
}

// RemoveEvent drops the event with id and reports whether it existed.
func (g *Generator) RemoveEvent(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	next := make([]telemetry.NetworkEvent, 0, len(g.events))
	for _, e := range g.events {
		if e.ID != id {
			next = append(next, e)
		}
	}
	found := len(next) != len(g.events)
	g.events = next
	return found
}

// RefreshEvents regenerates the incident list for the given entity ids using
// the configured count and look-back.
func (g *Generator) RefreshEvents(entityIDs []string) []telemetry.NetworkEvent {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.evGen.SetClock(g.now)
	g.events = g.evGen.Generate(entityIDs, g.opts.EventCount)
	return append([]telemetry.NetworkEvent(nil), g.events...)
}

// Generate builds one snapshot: both directions for every unordered exchange
// pair, plus exchange to region records where the provider differs or the
// region is further than the cross-region threshold. Exchanges and regions
// that cannot be placed are skipped and reported on the snapshot.
func (g *Generator) Generate(exchanges []catalog.Exchange, regions []catalog.CloudRegion) telemetry.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	snap := telemetry.Snapshot{ID: g.newID(), GeneratedAt: now}

	usable := make([]catalog.Exchange, 0, len(exchanges))
	for _, e := range exchanges {
		if e.ID == "" || !e.Location.Coordinate.Valid() {
			snap.Skipped++
			snap.Errors = append(snap.Errors, fmt.Sprintf("exchange %q has no usable id or location", e.ID))
			continue
		}
		usable = append(usable, e)
	}

	usableRegions := make([]catalog.CloudRegion, 0, len(regions))
	for _, r := range regions {
		if r.ID == "" || !r.Location.Valid() {
			snap.Skipped++
			snap.Errors = append(snap.Errors, fmt.Sprintf("region %q has no usable id or location", r.ID))
			continue
		}
		usableRegions = append(usableRegions, r)
	}

	idx := events.NewIndex(g.events)
	for i := 0; i < len(usable); i++ {
		for j := i + 1; j < len(usable); j++ {
			fwd, rev := g.pair(usable[i], usable[j], idx, now)
			snap.Records = append(snap.Records, fwd, rev)
		}
	}

	for _, e := range usable {
		for _, r := range usableRegions {
			km := geo.DistanceKm(e.Location.Coordinate, r.Location)
			if e.CloudProvider == r.Provider && km <= g.opts.CrossRegionKm {
				continue
			}
			lat := math.Round(latency.FromDistance(km, g.rand) * idx.Multiplier(e.ID, r.ID, now))
			lat = math.Max(latency.MinLatencyMs, lat)
			snap.Records = append(snap.Records, g.record(e.ID, r.ID, lat, km, geo.GreatCirclePath(e.Location.Coordinate, r.Location, g.opts.RouteSegments), now))
		}
	}
	return snap
}

func (g *Generator) pair(a, b catalog.Exchange, idx *events.Index, now time.Time) (telemetry.LatencyRecord, telemetry.LatencyRecord) {
	km := geo.DistanceKm(a.Location.Coordinate, b.Location.Coordinate)
	fwd := math.Round(latency.FromDistance(km, g.rand) * idx.Multiplier(a.ID, b.ID, now))
	fwd = math.Max(latency.MinLatencyMs, fwd)
	rev := math.Round(fwd + (g.rand.Float64()-0.5)*2*g.opts.ReverseSpread)
	rev = math.Max(latency.MinLatencyMs, rev)

	route := geo.GreatCirclePath(a.Location.Coordinate, b.Location.Coordinate, g.opts.RouteSegments)
	back := make([]geo.Coordinate, len(route))
	for i, c := range route {
		back[len(route)-1-i] = c
	}
	return g.record(a.ID, b.ID, fwd, km, route, now), g.record(b.ID, a.ID, rev, km, back, now)
}

func (g *Generator) record(from, to string, lat, km float64, route []geo.Coordinate, now time.Time) telemetry.LatencyRecord {
	return telemetry.LatencyRecord{
		From:       from,
		To:         to,
		Latency:    lat,
		Status:     g.opts.Thresholds.Bucket(lat),
		PacketLoss: telemetry.Float(latency.PacketLoss(lat, km, g.rand)),
		Jitter:     telemetry.Float(latency.Jitter(lat, g.rand)),
		Route:      route,
		Timestamp:  now,
	}
}
