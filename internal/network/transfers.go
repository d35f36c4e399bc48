package network

import (
	"math"
	"sort"

	"github.com/paulmach/orb"

	"raillog.org/engine/internal/geo"
)

// DefaultTransferRadiusKm bounds how far apart two same-named stations may be
// for a transfer to be inferred between them.
const DefaultTransferRadiusKm = 2.0

// TransferOptions controls how transfer edges are derived.
type TransferOptions struct {
	// Strict drops transfers between incompatible operators.
	Strict   bool
	RadiusKm float64
	Matcher  NameMatcher
}

func (o TransferOptions) withDefaults() TransferOptions {
	if o.RadiusKm <= 0 {
		o.RadiusKm = DefaultTransferRadiusKm
	}
	if o.Matcher == nil {
		o.Matcher = ExactMatcher{}
	}
	return o
}

// TransferIndex holds every transfer edge of a graph, precomputed once per
// snapshot. Explicit transfer lists on a station are authoritative for the
// lines they name; other lines are reached through same-named stations within
// the radius.
type TransferIndex struct {
	graph *Graph
	opts  TransferOptions
	edges map[StationRef][]StationRef
}

// NewTransferIndex computes transfer edges for g.
func NewTransferIndex(g *Graph, opts TransferOptions) *TransferIndex {
	opts = opts.withDefaults()
	t := &TransferIndex{
		graph: g,
		opts:  opts,
		edges: make(map[StationRef][]StationRef),
	}

	grid := newStationGrid(g, opts.RadiusKm)
	for _, l := range g.Lines() {
		for i, s := range l.Stations {
			from := StationRef{LineKey: l.Key, Index: i}
			if targets := t.targetsFor(l, s, grid); len(targets) > 0 {
				t.edges[from] = targets
			}
		}
	}
	return t
}

// Graph returns the snapshot the index was built from.
func (t *TransferIndex) Graph() *Graph {
	return t.graph
}

// Options returns the effective options.
func (t *TransferIndex) Options() TransferOptions {
	return t.opts
}

// From returns the transfer targets of a station, ordered by line key.
func (t *TransferIndex) From(ref StationRef) []StationRef {
	return t.edges[ref]
}

// Lines returns the keys of every line reachable by one transfer from lineKey.
func (t *TransferIndex) Lines(lineKey string) []string {
	l, ok := t.graph.Line(lineKey)
	if !ok {
		return nil
	}

	seen := map[string]bool{}
	var out []string
	for i := range l.Stations {
		for _, to := range t.edges[StationRef{LineKey: lineKey, Index: i}] {
			if !seen[to.LineKey] {
				seen[to.LineKey] = true
				out = append(out, to.LineKey)
			}
		}
	}
	sort.Strings(out)
	return out
}

// FirstTransfer returns the first station along fromLine with a transfer to
// toLine, together with its counterpart on toLine.
func (t *TransferIndex) FirstTransfer(fromLine, toLine string) (StationRef, StationRef, bool) {
	l, ok := t.graph.Line(fromLine)
	if !ok {
		return StationRef{}, StationRef{}, false
	}
	for i := range l.Stations {
		from := StationRef{LineKey: fromLine, Index: i}
		for _, to := range t.edges[from] {
			if to.LineKey == toLine {
				return from, to, true
			}
		}
	}
	return StationRef{}, StationRef{}, false
}

func (t *TransferIndex) targetsFor(l *Line, s Station, grid *stationGrid) []StationRef {
	best := map[string]StationRef{}
	bestDist := map[string]float64{}
	explicit := map[string]bool{}

	for _, key := range s.Transfers {
		if key == l.Key || explicit[key] {
			continue
		}
		other, ok := t.graph.Line(key)
		if !ok || (t.opts.Strict && !IsCompatible(l.Meta, other.Meta)) {
			continue
		}
		explicit[key] = true

		idx, d := -1, math.Inf(1)
		for j, cand := range other.Stations {
			if !t.opts.Matcher.Same(s.Name, cand.Name) {
				continue
			}
			if cd := geo.Distance(s.Point(), cand.Point()); cd < d {
				idx, d = j, cd
			}
		}
		if idx >= 0 {
			best[key] = StationRef{LineKey: key, Index: idx}
			bestDist[key] = d
		}
	}

	for _, ref := range grid.near(s.Point()) {
		if ref.LineKey == l.Key || explicit[ref.LineKey] {
			continue
		}
		other, _ := t.graph.Line(ref.LineKey)
		if t.opts.Strict && !IsCompatible(l.Meta, other.Meta) {
			continue
		}
		cand := other.Stations[ref.Index]
		if !t.opts.Matcher.Same(s.Name, cand.Name) {
			continue
		}
		d := geo.Distance(s.Point(), cand.Point())
		if d >= t.opts.RadiusKm {
			continue
		}
		if prev, ok := bestDist[ref.LineKey]; !ok || d < prev || (d == prev && ref.Index < best[ref.LineKey].Index) {
			best[ref.LineKey] = ref
			bestDist[ref.LineKey] = d
		}
	}

	out := make([]StationRef, 0, len(best))
	for _, ref := range best {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LineKey < out[j].LineKey })
	return out
}

// stationGrid buckets stations into square cells of roughly the search radius.
type stationGrid struct {
	graph *Graph
	cell  float64
	cells map[[2]int][]StationRef
}

func newStationGrid(g *Graph, radiusKm float64) *stationGrid {
	grid := &stationGrid{
		graph: g,
		cell:  radiusKm / 111.19,
		cells: map[[2]int][]StationRef{},
	}
	for _, l := range g.Lines() {
		for i, s := range l.Stations {
			c := grid.cellOf(s.Lat, s.Lng)
			grid.cells[c] = append(grid.cells[c], StationRef{LineKey: l.Key, Index: i})
		}
	}
	return grid
}

func (grid *stationGrid) cellOf(lat, lng float64) [2]int {
	return [2]int{int(math.Floor(lat / grid.cell)), int(math.Floor(lng / grid.cell))}
}

// near returns every station in the cells overlapping the radius around p.
// Callers still check the exact distance.
func (grid *stationGrid) near(p orb.Point) []StationRef {
	lat, lng := p.Lat(), p.Lon()
	latSpan := 1
	lngSpan := int(math.Ceil(1 / math.Max(math.Cos(lat*math.Pi/180), 0.01)))

	center := grid.cellOf(lat, lng)
	var out []StationRef
	for dy := -latSpan; dy <= latSpan; dy++ {
		for dx := -lngSpan; dx <= lngSpan; dx++ {
			out = append(out, grid.cells[[2]int{center[0] + dy, center[1] + dx}]...)
		}
	}
	return out
}
