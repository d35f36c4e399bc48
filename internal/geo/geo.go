// Package geo holds the small amount of spherical and planar geometry the engine needs.
// Points are orb.Point values, which store [lng, lat].
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// EarthRadiusKm is the mean earth radius used by every distance in the engine.
const EarthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two coordinates in kilometres.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	deltaPhi := (lat2 - lat1) * math.Pi / 180
	deltaLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Distance is HaversineKm for two orb points.
func Distance(a, b orb.Point) float64 {
	return HaversineKm(a.Lat(), a.Lon(), b.Lat(), b.Lon())
}

// Length returns the great-circle length of a polyline in kilometres.
func Length(ls orb.LineString) float64 {
	var total float64
	for i := 1; i < len(ls); i++ {
		total += Distance(ls[i-1], ls[i])
	}
	return total
}

// Interpolate linearly interpolates between two points.
func Interpolate(start, end orb.Point, fraction float64) orb.Point {
	return orb.Point{
		start[0] + (end[0]-start[0])*fraction,
		start[1] + (end[1]-start[1])*fraction,
	}
}

// ProjectOnSegment projects p onto segment ab in the lng/lat plane, clamped to the
// segment. It returns the projected point and its parameter t in [0, 1];
// points past either end return that endpoint exactly.
func ProjectOnSegment(p, a, b orb.Point) (orb.Point, float64) {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	if dx == 0 && dy == 0 {
		return a, 0
	}

	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / (dx*dx + dy*dy)
	switch {
	case t <= 0:
		return a, 0
	case t >= 1:
		return b, 1
	}
	return orb.Point{a[0] + t*dx, a[1] + t*dy}, t
}

// PlanarDistanceSquared is the squared euclidean distance in degrees.
func PlanarDistanceSquared(a, b orb.Point) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return dx*dx + dy*dy
}

// PointToLineDistance returns the distance in kilometres from p to the closest point of ls.
func PointToLineDistance(p orb.Point, ls orb.LineString) float64 {
	if len(ls) == 0 {
		return math.Inf(1)
	}
	if len(ls) == 1 {
		return Distance(p, ls[0])
	}

	best := math.Inf(1)
	for i := 0; i < len(ls)-1; i++ {
		proj, _ := ProjectOnSegment(p, ls[i], ls[i+1])
		if d := Distance(p, proj); d < best {
			best = d
		}
	}
	return best
}

// Location is a position on a polyline.
type Location struct {
	Point orb.Point
	// Index of the segment start vertex the point lies on.
	Index int
	// Along is the arc length in kilometres from the first vertex.
	Along float64
	// Distance from the query point in kilometres.
	Distance float64
}

// NearestOnLine snaps p to the closest position of ls. The first closest
// position wins on ties so the result is stable for closed loops.
func NearestOnLine(ls orb.LineString, p orb.Point) Location {
	if len(ls) == 0 {
		return Location{Point: p, Distance: math.Inf(1)}
	}
	if len(ls) == 1 {
		return Location{Point: ls[0], Distance: Distance(p, ls[0])}
	}

	best := Location{Distance: math.Inf(1)}
	var walked float64
	for i := 0; i < len(ls)-1; i++ {
		proj, _ := ProjectOnSegment(p, ls[i], ls[i+1])
		if d := Distance(p, proj); d < best.Distance {
			best = Location{
				Point:    proj,
				Index:    i,
				Along:    walked + Distance(ls[i], proj),
				Distance: d,
			}
		}
		walked += Distance(ls[i], ls[i+1])
	}
	return best
}

// SliceAlong returns the part of ls between two arc-length positions, oriented
// from the first position towards the second.
func SliceAlong(ls orb.LineString, from, to float64) orb.LineString {
	if len(ls) < 2 {
		return append(orb.LineString(nil), ls...)
	}

	reversed := from > to
	lo, hi := from, to
	if reversed {
		lo, hi = to, from
	}

	out := orb.LineString{pointAt(ls, lo)}
	var walked float64
	for i := 1; i < len(ls); i++ {
		walked += Distance(ls[i-1], ls[i])
		if walked > lo && walked < hi {
			out = append(out, ls[i])
		}
	}
	out = append(out, pointAt(ls, hi))

	if reversed {
		out.Reverse()
	}
	return out
}

// pointAt returns the point at the given arc length, clamped to the line ends.
func pointAt(ls orb.LineString, along float64) orb.Point {
	if along <= 0 {
		return ls[0]
	}

	var walked float64
	for i := 1; i < len(ls); i++ {
		step := Distance(ls[i-1], ls[i])
		if walked+step >= along {
			if step == 0 {
				return ls[i]
			}
			return Interpolate(ls[i-1], ls[i], (along-walked)/step)
		}
		walked += step
	}
	return ls[len(ls)-1]
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// LatLng converts a polyline to [lat, lng] pairs.
func LatLng(ls orb.LineString) [][2]float64 {
	out := make([][2]float64, len(ls))
	for i, p := range ls {
		out[i] = [2]float64{p.Lat(), p.Lon()}
	}
	return out
}
