package history

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"exchange-latency-sim/internal/events"
	"exchange-latency-sim/internal/telemetry"
)

var fixedNow = time.Date(2024, 3, 6, 15, 0, 0, 0, time.UTC) // a Wednesday

func newTestGenerator(seed int64, opts ...Option) *Generator {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewGenerator(rand.New(rand.NewSource(seed)), opts...)
}

type splitter map[string][2]string

func (s splitter) SplitPair(key string) (string, string, bool) {
	p, ok := s[key]
	return p[0], p[1], ok
}

func TestSeriesLength24h(t *testing.T) {
	g := newTestGenerator(1)
	pts, diag, err := g.Generate([]string{"pairA"}, Range24h, 144)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(diag.Skipped) != 0 {
		t.Fatalf("unexpected skipped pairs %v", diag.Skipped)
	}
	if len(pts) != 144 {
		t.Fatalf("expected 144 points, got %d", len(pts))
	}
	lo := fixedNow.Add(-24 * time.Hour)
	for i, p := range pts {
		if p.PairKey != "pairA" {
			t.Fatalf("unexpected pair key %q", p.PairKey)
		}
		if p.Timestamp.Before(lo) || p.Timestamp.After(fixedNow) {
			t.Fatalf("point %d at %v outside window", i, p.Timestamp)
		}
		if i > 0 && !p.Timestamp.After(pts[i-1].Timestamp) {
			t.Fatalf("timestamps not strictly ascending at %d", i)
		}
	}
	if !pts[0].Timestamp.Equal(lo) || !pts[143].Timestamp.Equal(fixedNow) {
		t.Fatalf("series does not span the window: %v .. %v", pts[0].Timestamp, pts[143].Timestamp)
	}
}

func TestSeriesValueBounds(t *testing.T) {
	g := newTestGenerator(2)
	pts, _, err := g.GenerateRange([]string{"a-b", "c-d"}, Range7d)
	if err != nil {
		t.Fatalf("GenerateRange: %v", err)
	}
	if len(pts) != 2*168 {
		t.Fatalf("expected %d points, got %d", 2*168, len(pts))
	}
	// base 50-250, daily 0.8-1.2, weekly 0.9-1.1, random 0.8-1.2, spike up to 2.5
	maxLat := math.Round(250 * 1.2 * 1.1 * 1.2 * 2.5)
	minLat := math.Round(50 * 0.8 * 0.9 * 0.8)
	for _, p := range pts {
		if p.Latency < minLat || p.Latency > maxLat {
			t.Fatalf("latency %v outside [%v, %v]", p.Latency, minLat, maxLat)
		}
		if p.Latency != math.Round(p.Latency) {
			t.Fatalf("latency %v not rounded", p.Latency)
		}
		if p.PacketLoss < 0 || p.PacketLoss > 5 {
			t.Fatalf("packet loss %v out of bounds", p.PacketLoss)
		}
		if p.Jitter < 0 {
			t.Fatalf("negative jitter")
		}
		if p.Volume == nil || *p.Volume < 0 || *p.Volume > 1e6*1.2*1.1 {
			t.Fatalf("volume out of bounds: %v", p.Volume)
		}
	}
}

func TestStableSortKeepsPairOrder(t *testing.T) {
	g := newTestGenerator(3)
	pts, _, err := g.Generate([]string{"first", "second"}, Range1h, 10)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i := 0; i < len(pts); i += 2 {
		if pts[i].PairKey != "first" || pts[i+1].PairKey != "second" {
			t.Fatalf("tie order broken at %d: %s, %s", i, pts[i].PairKey, pts[i+1].PairKey)
		}
		if !pts[i].Timestamp.Equal(pts[i+1].Timestamp) {
			t.Fatalf("expected shared timestamps")
		}
	}
}

func TestSinglePointAtNow(t *testing.T) {
	pts, _, err := newTestGenerator(4).Generate([]string{"p"}, Range30d, 1)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(pts) != 1 || !pts[0].Timestamp.Equal(fixedNow) {
		t.Fatalf("unexpected single point %+v", pts)
	}
}

func TestInvalidInputFailsFast(t *testing.T) {
	g := newTestGenerator(5)
	if _, _, err := g.Generate([]string{"p"}, "2w", 10); !errors.Is(err, ErrUnknownRange) {
		t.Fatalf("expected ErrUnknownRange, got %v", err)
	}
	if _, _, err := g.Generate([]string{"p"}, Range1h, 0); !errors.Is(err, ErrPointCount) {
		t.Fatalf("expected ErrPointCount, got %v", err)
	}
	if _, _, err := g.GenerateRange([]string{"p"}, ""); !errors.Is(err, ErrUnknownRange) {
		t.Fatalf("expected ErrUnknownRange for empty range, got %v", err)
	}
}

func TestResolverSkipsUnknownPairs(t *testing.T) {
	res := splitter{"a-b": {"a", "b"}}
	g := newTestGenerator(6, WithResolver(res))
	pts, diag, err := g.Generate([]string{"a-b", "ghost-pair"}, Range1h, 5)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(pts) != 5 {
		t.Fatalf("expected 5 points, got %d", len(pts))
	}
	if len(diag.Skipped) != 1 || diag.Skipped[0] != "ghost-pair" {
		t.Fatalf("diagnostics = %+v", diag)
	}
}

func TestEventsRaiseLatency(t *testing.T) {
	res := splitter{"a-b": {"a", "b"}}
	outage := events.Ongoing("o", telemetry.EventOutage, telemetry.SeverityHigh, []string{"a"}, fixedNow.Add(-2*time.Hour))

	plain, _, err := newTestGenerator(7, WithResolver(res)).Generate([]string{"a-b"}, Range1h, 30)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	hit, _, err := newTestGenerator(7, WithResolver(res), WithEvents([]telemetry.NetworkEvent{outage})).Generate([]string{"a-b"}, Range1h, 30)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	// identical seeds draw identically until the multiplied latency feeds the
	// packet loss and jitter draws, so compare the first point only
	if hit[0].Latency < plain[0].Latency*4 {
		t.Fatalf("outage did not raise latency: %v vs %v", hit[0].Latency, plain[0].Latency)
	}
}

func TestMultipliers(t *testing.T) {
	if got := DailyMultiplier(12); math.Abs(got-1.2) > 1e-12 {
		t.Fatalf("DailyMultiplier(12) = %v", got)
	}
	if got := DailyMultiplier(0); math.Abs(got-0.8) > 1e-12 {
		t.Fatalf("DailyMultiplier(0) = %v", got)
	}
	if got := DailyMultiplier(6); got != 1 {
		t.Fatalf("DailyMultiplier(6) = %v", got)
	}
	if WeeklyMultiplier(time.Monday) != 1.1 || WeeklyMultiplier(time.Friday) != 1.1 {
		t.Fatalf("weekday multiplier wrong")
	}
	if WeeklyMultiplier(time.Saturday) != 0.9 || WeeklyMultiplier(time.Sunday) != 0.9 {
		t.Fatalf("weekend multiplier wrong")
	}
}

func TestRanges(t *testing.T) {
	r := DefaultRanges()
	if err := r.Validate(); err != nil {
		t.Fatalf("default ranges invalid: %v", err)
	}
	names := r.Names()
	if len(names) != 4 || names[0] != Range1h || names[3] != Range30d {
		t.Fatalf("Names() = %v", names)
	}
	r["bad"] = RangeSpec{Duration: time.Hour}
	if err := r.Validate(); err == nil || !strings.Contains(err.Error(), "bad") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestOverriddenRangesAndDistance(t *testing.T) {
	g := newTestGenerator(8, WithRanges(Ranges{"15m": {Duration: 15 * time.Minute, Points: 15}}), WithDistance(20000))
	pts, _, err := g.GenerateRange([]string{"x"}, "15m")
	if err != nil {
		t.Fatalf("GenerateRange: %v", err)
	}
	if len(pts) != 15 {
		t.Fatalf("expected 15 points, got %d", len(pts))
	}
	if _, _, err := g.GenerateRange([]string{"x"}, Range24h); !errors.Is(err, ErrUnknownRange) {
		t.Fatalf("default range should be gone, got %v", err)
	}
	for _, p := range pts {
		// 20000 km contributes a 0.2% floor
		if p.PacketLoss < 0.2 {
			t.Fatalf("packet loss %v ignores distance override", p.PacketLoss)
		}
	}
}

func TestPopularPairs(t *testing.T) {
	pairs := PopularPairs()
	if len(pairs) != 5 || pairs[0].Key() != "binance-singapore-coinbase-sanfrancisco" {
		t.Fatalf("PopularPairs = %v", pairs)
	}
}
