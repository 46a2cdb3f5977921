package latency

import (
	"math/rand"
	"testing"

	"exchange-latency-sim/internal/geo"
	"exchange-latency-sim/internal/telemetry"
)

// fixedSource always returns the same draw.
type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

func TestBaseFromDistance(t *testing.T) {
	if got := BaseFromDistance(0); got != MinLatencyMs {
		t.Fatalf("BaseFromDistance(0) = %v", got)
	}
	if got := BaseFromDistance(-10); got != MinLatencyMs {
		t.Fatalf("BaseFromDistance(-10) = %v", got)
	}
	prev := 0.0
	for km := 0.0; km <= 20000; km += 250 {
		b := BaseFromDistance(km)
		if b < prev {
			t.Fatalf("base latency decreased at %v km", km)
		}
		prev = b
	}
	if got := BaseFromDistance(15000); got != 100 {
		t.Fatalf("BaseFromDistance(15000) = %v, want 100", got)
	}
}

func TestLatencyPositive(t *testing.T) {
	for _, r := range []float64{0, 0.5, 0.999999} {
		for _, km := range []float64{0, 1, 100, 20000} {
			if got := FromDistance(km, fixedSource(r)); got < MinLatencyMs {
				t.Fatalf("FromDistance(%v, %v) = %v", km, r, got)
			}
		}
	}
}

func TestApplyStochasticBounds(t *testing.T) {
	base := 100.0
	// lowest draws: routing 20%, congestion 0, processing 1ms, variance -5%
	lo := ApplyStochastic(base, fixedSource(0))
	if want := (base*1.2 + 1) * 0.95; lo < want-1e-9 || lo > want+1e-9 {
		t.Fatalf("low bound = %v, want %v", lo, want)
	}
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		v := ApplyStochastic(base, r)
		if v < (base*1.2+1)*0.95 || v > (base*1.8+5)*1.05 {
			t.Fatalf("sample %v out of range", v)
		}
	}
}

func TestSingaporeTokyoBand(t *testing.T) {
	km := geo.DistanceKm(geo.Coordinate{Lat: 1.35, Lng: 103.82}, geo.Coordinate{Lat: 35.68, Lng: 139.65})
	r := rand.New(rand.NewSource(11))
	var sum float64
	const n = 500
	for i := 0; i < n; i++ {
		v := FromDistance(km, r)
		if v < 30 || v > 150 {
			t.Fatalf("Singapore-Tokyo latency %v outside 30-150ms", v)
		}
		sum += v
	}
	if mean := sum / n; mean < 40 || mean > 80 {
		t.Fatalf("mean latency %v outside expected band", mean)
	}
}

func TestPacketLossBounds(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	for i := 0; i < 2000; i++ {
		lat := r.Float64() * 5000
		km := r.Float64() * 40000
		loss := PacketLoss(lat, km, r)
		if loss < 0 || loss > MaxPacketLoss {
			t.Fatalf("PacketLoss(%v, %v) = %v", lat, km, loss)
		}
	}
	if got := PacketLoss(10000, 20000, fixedSource(0.99)); got != MaxPacketLoss {
		t.Fatalf("expected clamp at %v, got %v", MaxPacketLoss, got)
	}
	if got := PacketLoss(100, 10000, fixedSource(0)); got != 0.1 {
		t.Fatalf("PacketLoss(100, 10000, 0) = %v, want 0.1", got)
	}
	if got := PacketLoss(300, 0, fixedSource(0)); got != 0.1 {
		t.Fatalf("high latency contribution = %v, want 0.1", got)
	}
}

func TestJitter(t *testing.T) {
	// no spike when the draw is above the spike chance
	if got := Jitter(100, fixedSource(0.5)); got != 10 {
		t.Fatalf("Jitter(100, 0.5) = %v, want 10", got)
	}
	// draw 0 triggers the spike branch with a zero sized spike
	if got := Jitter(100, fixedSource(0)); got != 5 {
		t.Fatalf("Jitter(100, 0) = %v, want 5", got)
	}
	if got := Jitter(0, fixedSource(0.5)); got != 0.1 {
		t.Fatalf("Jitter floor = %v", got)
	}
	r := rand.New(rand.NewSource(9))
	for i := 0; i < 1000; i++ {
		j := Jitter(200, r)
		if j < 10 || j > 40 {
			t.Fatalf("jitter %v out of range", j)
		}
	}
}

func TestThresholds(t *testing.T) {
	th := DefaultThresholds()
	if err := th.Validate(); err != nil {
		t.Fatalf("default thresholds invalid: %v", err)
	}
	if err := (Thresholds{Low: 100, Medium: 50, High: 300}).Validate(); err == nil {
		t.Fatalf("expected error for descending thresholds")
	}
	cases := []struct {
		ms            float64
		bucket, level telemetry.LatencyStatus
	}{
		{10, telemetry.StatusLow, telemetry.StatusLow},
		{49.9, telemetry.StatusLow, telemetry.StatusLow},
		{50, telemetry.StatusMedium, telemetry.StatusMedium},
		{149, telemetry.StatusMedium, telemetry.StatusMedium},
		{150, telemetry.StatusHigh, telemetry.StatusHigh},
		{299, telemetry.StatusHigh, telemetry.StatusHigh},
		{300, telemetry.StatusHigh, telemetry.StatusCritical},
	}
	for _, c := range cases {
		if got := th.Bucket(c.ms); got != c.bucket {
			t.Errorf("Bucket(%v) = %s, want %s", c.ms, got, c.bucket)
		}
		if got := th.Level(c.ms); got != c.level {
			t.Errorf("Level(%v) = %s, want %s", c.ms, got, c.level)
		}
	}
}

func TestBucketMonotonic(t *testing.T) {
	th := Thresholds{Low: 20, Medium: 80, High: 200}
	for below := 0.0; below < th.Low; below += 1 {
		for above := th.Low; above < 500; above += 7 {
			if th.Bucket(below) != telemetry.StatusLow || th.Bucket(above) == telemetry.StatusLow {
				t.Fatalf("monotonicity broken at %v / %v", below, above)
			}
		}
	}
}
