package geo

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	singapore = Coordinate{Lat: 1.35, Lng: 103.82}
	tokyo     = Coordinate{Lat: 35.68, Lng: 139.65}
	london    = Coordinate{Lat: 51.5074, Lng: -0.1278}
	newYork   = Coordinate{Lat: 40.7128, Lng: -74.0060}
)

func randomCoordinate(r *rand.Rand) Coordinate {
	return Coordinate{Lat: r.Float64()*180 - 90, Lng: r.Float64()*360 - 180}
}

func TestDistanceSymmetric(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		a, b := randomCoordinate(r), randomCoordinate(r)
		assert.InDelta(t, DistanceKm(a, b), DistanceKm(b, a), 1e-6)
	}
}

func TestDistanceSelfIsZero(t *testing.T) {
	for _, c := range []Coordinate{singapore, tokyo, {Lat: 90, Lng: 0}, {Lat: -90, Lng: 180}} {
		assert.Zero(t, DistanceKm(c, c))
	}
}

func TestDistanceSingaporeTokyo(t *testing.T) {
	d := DistanceKm(singapore, tokyo)
	assert.InDelta(t, 5300, d, 100)
}

func TestDistanceLondonNewYork(t *testing.T) {
	assert.InDelta(t, 5570, DistanceKm(london, newYork), 30)
}

func TestGreatCirclePathEndpoints(t *testing.T) {
	for _, n := range []int{1, 2, 10, 64} {
		path := GreatCirclePath(singapore, tokyo, n)
		require.Len(t, path, n+1)
		assert.InDelta(t, singapore.Lat, path[0].Lat, 1e-9)
		assert.InDelta(t, singapore.Lng, path[0].Lng, 1e-9)
		assert.InDelta(t, tokyo.Lat, path[n].Lat, 1e-9)
		assert.InDelta(t, tokyo.Lng, path[n].Lng, 1e-9)
	}
}

func TestGreatCirclePathMonotonic(t *testing.T) {
	path := GreatCirclePath(london, newYork, 20)
	prev := -1.0
	for _, p := range path {
		d := DistanceKm(london, p)
		assert.Greater(t, d, prev)
		prev = d
	}
	total := DistanceKm(london, newYork)
	var sum float64
	for i := 1; i < len(path); i++ {
		sum += DistanceKm(path[i-1], path[i])
	}
	assert.InDelta(t, total, sum, 1e-3)
}

func TestGreatCirclePathDegenerate(t *testing.T) {
	path := GreatCirclePath(tokyo, tokyo, 5)
	require.Len(t, path, 6)
	for _, p := range path {
		assert.Equal(t, tokyo, p)
	}
	assert.Len(t, GreatCirclePath(tokyo, london, 0), 2)
}

func TestGreatCirclePathCrossesAntimeridian(t *testing.T) {
	a := Coordinate{Lat: 35.68, Lng: 139.65}
	b := Coordinate{Lat: 37.77, Lng: -122.42}
	path := GreatCirclePath(a, b, 10)
	mid := path[5]
	// the short arc runs over the north Pacific, not across Eurasia
	assert.True(t, math.Abs(mid.Lng) > 150, "midpoint lng %.2f", mid.Lng)
}

func TestClampAndValid(t *testing.T) {
	c := Clamp(Coordinate{Lat: 120, Lng: -200})
	assert.Equal(t, Coordinate{Lat: 90, Lng: -180}, c)
	assert.True(t, c.Valid())
	assert.False(t, Coordinate{Lat: -91}.Valid())
	assert.False(t, Coordinate{Lat: math.NaN()}.Valid())
}

func TestMidpoint(t *testing.T) {
	m := Midpoint(london, newYork)
	assert.InDelta(t, DistanceKm(london, m), DistanceKm(m, newYork), 1e-6)
	assert.Equal(t, tokyo, Midpoint(tokyo, tokyo))
}
