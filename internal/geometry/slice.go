package geometry

import (
	"math"

	"github.com/paulmach/orb"

	"raillog.org/engine/internal/geo"
)

// DefaultLoopToleranceKm is how close the two ends of a line must be for it
// to count as a loop.
const DefaultLoopToleranceKm = 0.5

// Slicer extracts the ridden sub-path between two points of a line.
type Slicer struct {
	LoopToleranceKm float64
}

// SliceResult holds one part for a direct ride and two when a loop is ridden
// across its seam. Parts are oriented from start to end.
type SliceResult struct {
	Parts  []orb.LineString
	Loop   bool
	Length float64
}

// Multi reports whether the result has more than one part.
func (r SliceResult) Multi() bool {
	return len(r.Parts) > 1
}

// Slice snaps start and end onto line and returns the polyline between them.
// On a loop line the shorter way round wins, the direct way on ties.
// ok is false when line has fewer than two points.
func (s Slicer) Slice(line orb.LineString, start, end orb.Point) (SliceResult, bool) {
	if len(line) < 2 {
		return SliceResult{}, false
	}

	tolerance := s.LoopToleranceKm
	if tolerance <= 0 {
		tolerance = DefaultLoopToleranceKm
	}

	from := geo.NearestOnLine(line, start).Along
	to := geo.NearestOnLine(line, end).Along
	direct := math.Abs(to - from)

	isLoop := geo.Distance(line[0], line[len(line)-1]) < tolerance
	if !isLoop {
		return SliceResult{
			Parts:  []orb.LineString{geo.SliceAlong(line, from, to)},
			Length: direct,
		}, true
	}

	total := geo.Length(line)
	wrap := total - math.Max(from, to) + math.Min(from, to)
	if direct <= wrap {
		return SliceResult{
			Parts:  []orb.LineString{geo.SliceAlong(line, from, to)},
			Loop:   true,
			Length: direct,
		}, true
	}

	var parts []orb.LineString
	if from > to {
		parts = []orb.LineString{
			geo.SliceAlong(line, from, total),
			geo.SliceAlong(line, 0, to),
		}
	} else {
		parts = []orb.LineString{
			geo.SliceAlong(line, from, 0),
			geo.SliceAlong(line, total, to),
		}
	}
	return SliceResult{Parts: parts, Loop: true, Length: wrap}, true
}
