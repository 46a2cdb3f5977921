// Package geo provides great-circle helpers on a spherical Earth.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for all distance calculations.
const EarthRadiusKm = 6371.0

const epsilon = 1e-12

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Valid reports whether the coordinate lies inside the legal lat/lng bounds.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Clamp forces lat into [-90,90] and lng into [-180,180].
func Clamp(c Coordinate) Coordinate {
	return Coordinate{
		Lat: math.Max(-90, math.Min(90, c.Lat)),
		Lng: math.Max(-180, math.Min(180, c.Lng)),
	}
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
func toDeg(rad float64) float64 { return rad * 180 / math.Pi }

// DistanceKm returns the haversine great-circle distance between a and b.
func DistanceKm(a, b Coordinate) float64 {
	lat1, lat2 := toRad(a.Lat), toRad(b.Lat)
	dLat := lat2 - lat1
	dLng := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// rounding can push h a hair above 1 for near-antipodal points
	h = math.Min(1, math.Max(0, h))
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// centralAngle is the angular distance between a and b in radians.
func centralAngle(a, b Coordinate) float64 {
	return DistanceKm(a, b) / EarthRadiusKm
}

// GreatCirclePath interpolates segments+1 points along the shortest arc from a
// to b. The first point is a and the last is b. Identical endpoints yield
// segments+1 copies of a. segments below 1 is treated as 1.
func GreatCirclePath(a, b Coordinate, segments int) []Coordinate {
	if segments < 1 {
		segments = 1
	}
	path := make([]Coordinate, segments+1)

	d := centralAngle(a, b)
	if d < epsilon {
		for i := range path {
			path[i] = a
		}
		return path
	}

	lat1, lng1 := toRad(a.Lat), toRad(a.Lng)
	lat2, lng2 := toRad(b.Lat), toRad(b.Lng)
	sinD := math.Sin(d)

	for i := 0; i <= segments; i++ {
		f := float64(i) / float64(segments)
		path[i] = slerp(lat1, lng1, lat2, lng2, d, sinD, f)
	}
	// pin the endpoints so callers get the exact inputs back
	path[0] = a
	path[segments] = b
	return path
}

// Midpoint returns the point halfway along the great circle from a to b.
func Midpoint(a, b Coordinate) Coordinate {
	d := centralAngle(a, b)
	if d < epsilon {
		return a
	}
	return slerp(toRad(a.Lat), toRad(a.Lng), toRad(b.Lat), toRad(b.Lng), d, math.Sin(d), 0.5)
}

func slerp(lat1, lng1, lat2, lng2, d, sinD, f float64) Coordinate {
	wa := math.Sin((1-f)*d) / sinD
	wb := math.Sin(f*d) / sinD

	x := wa*math.Cos(lat1)*math.Cos(lng1) + wb*math.Cos(lat2)*math.Cos(lng2)
	y := wa*math.Cos(lat1)*math.Sin(lng1) + wb*math.Cos(lat2)*math.Sin(lng2)
	z := wa*math.Sin(lat1) + wb*math.Sin(lat2)

	return Coordinate{
		Lat: toDeg(math.Atan2(z, math.Sqrt(x*x+y*y))),
		Lng: toDeg(math.Atan2(y, x)),
	}
}
