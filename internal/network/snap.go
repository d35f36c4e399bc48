package network

import (
	"math"

	"github.com/paulmach/orb"

	"raillog.org/engine/internal/geo"
)

// DefaultSnapThreshold is the squared planar distance in degrees (~10 km)
// beyond which a point is considered off the network.
const DefaultSnapThreshold = 0.01

// SnapResult is the outcome of snapping a coordinate to the network.
// LineKey is empty when the point was too far from every line.
type SnapResult struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	LineKey string  `json:"lineKey"`
	Percent int     `json:"percent"`
}

// Snapped reports whether the point landed on a line.
func (r SnapResult) Snapped() bool {
	return r.LineKey != ""
}

// Snap projects (lat, lng) onto the closest adjacent-station segment of any
// line. Distances are compared in the lng/lat plane; threshold <= 0 uses
// DefaultSnapThreshold.
func (g *Graph) Snap(lat, lng, threshold float64) SnapResult {
	if threshold <= 0 {
		threshold = DefaultSnapThreshold
	}

	target := orb.Point{lng, lat}
	minDist := math.Inf(1)
	best := SnapResult{Lat: lat, Lng: lng}

	for _, l := range g.Lines() {
		n := len(l.Stations)
		for i := 0; i < n-1; i++ {
			proj, _ := geo.ProjectOnSegment(target, l.Stations[i].Point(), l.Stations[i+1].Point())
			d := geo.PlanarDistanceSquared(target, proj)
			if d < minDist {
				minDist = d
				best = SnapResult{
					Lat:     proj.Lat(),
					Lng:     proj.Lon(),
					LineKey: l.Key,
					Percent: int(math.Round(float64(i) / float64(n) * 100)),
				}
			}
		}
	}

	if minDist > threshold {
		return SnapResult{Lat: lat, Lng: lng}
	}
	return best
}
