// Package routing finds ride-able itineraries through a network snapshot.
package routing

import (
	"container/heap"
	"context"
	"log/slog"
	"math"
	"time"

	"raillog.org/engine/internal/geo"
	"raillog.org/engine/internal/logging"
	"raillog.org/engine/internal/network"
)

// Endpoint names a station on a line.
type Endpoint struct {
	LineKey   string `json:"lineKey"`
	StationID string `json:"stationId"`
}

func (e Endpoint) String() string {
	return e.LineKey + "/" + e.StationID
}

// Query is one routing request.
type Query struct {
	From    Endpoint
	To      Endpoint
	Profile Profile
}

// Result is a found itinerary.
type Result struct {
	Segments []network.Segment `json:"segments"`
	Profile  Profile           `json:"profile"`
	// Cost is the search cost: ridden kilometres plus transfer penalties.
	Cost float64 `json:"cost"`
	// Expanded counts the states taken off the frontier.
	Expanded int `json:"expanded"`
}

// Finder searches one network snapshot. It is safe for concurrent use.
type Finder struct {
	strict  *network.TransferIndex
	relaxed *network.TransferIndex
	opts    Options
	logger  *slog.Logger
}

// NewFinder creates a finder. strict supplies the transfer edges searched;
// relaxed, when not nil, is only used to explain failures.
func NewFinder(strict, relaxed *network.TransferIndex, opts Options, logger *slog.Logger) *Finder {
	return &Finder{
		strict:  strict,
		relaxed: relaxed,
		opts:    opts.withDefaults(),
		logger:  logger,
	}
}

// Options returns the effective options.
func (f *Finder) Options() Options {
	return f.opts
}

// Find runs the search selected by q.Profile.
func (f *Finder) Find(ctx context.Context, q Query) (Result, error) {
	if q.Profile == LineLevelProfile {
		return f.FindLines(ctx, q)
	}
	return f.FindRoute(ctx, q)
}

// FindRoute runs the station-level search: ride edges cost great-circle
// kilometres, transfers cost a flat penalty, and the frontier is ordered by
// cost plus weighted distance to the destination.
func (f *Finder) FindRoute(ctx context.Context, q Query) (Result, error) {
	start := time.Now()
	g := f.strict.Graph()

	from, to, err := resolveEndpoints(g, q)
	if err != nil {
		return Result{}, err
	}

	res, found, err := f.search(ctx, f.strict, from, to)
	if err != nil {
		return Result{}, err
	}
	if !found {
		return Result{}, f.explain(ctx, q, from, to)
	}

	res.Profile = StationProfile
	if f.logger != nil {
		f.logger.Debug("route search",
			slog.String("from", q.From.String()),
			slog.String("to", q.To.String()),
			slog.Int("segments", len(res.Segments)),
			slog.Int("expanded", res.Expanded),
			slog.Duration("duration", time.Since(start)))
	}
	return res, nil
}

func resolveEndpoints(g *network.Graph, q Query) (network.StationRef, network.StationRef, error) {
	_, fromIdx, ok := g.Station(q.From.LineKey, q.From.StationID)
	if !ok {
		return network.StationRef{}, network.StationRef{}, invalidQuery("unknown origin %s", q.From)
	}
	_, toIdx, ok := g.Station(q.To.LineKey, q.To.StationID)
	if !ok {
		return network.StationRef{}, network.StationRef{}, invalidQuery("unknown destination %s", q.To)
	}
	return network.StationRef{LineKey: q.From.LineKey, Index: fromIdx},
		network.StationRef{LineKey: q.To.LineKey, Index: toIdx}, nil
}

// search is the A*-like core shared by FindRoute and failure diagnosis.
func (f *Finder) search(ctx context.Context, idx *network.TransferIndex, from, to network.StationRef) (Result, bool, error) {
	g := idx.Graph()
	dest := g.At(to)
	matcher := idx.Options().Matcher

	gScore := map[network.StationRef]float64{from: 0}
	cameFrom := map[network.StationRef]network.StationRef{}
	visited := map[network.StationRef]bool{}

	// Discounted high-speed rides can cost less than their distance, so the
	// estimate is scaled down with them.
	hScale := f.opts.HeuristicWeight * math.Min(1, f.opts.HighSpeedFactor)

	open := &frontier{}
	seq := 0
	push := func(ref network.StationRef, cost float64) {
		h := geo.Distance(g.At(ref).Point(), dest.Point())
		heap.Push(open, &node{ref: ref, g: cost, f: cost + h*hScale, seq: seq})
		seq++
	}
	push(from, 0)

	expanded := 0
	for open.Len() > 0 {
		if expanded%256 == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, false, err
			}
		}

		cur := heap.Pop(open).(*node)
		if visited[cur.ref] {
			continue
		}
		visited[cur.ref] = true
		expanded++

		here := g.At(cur.ref)
		if cur.ref == to {
			return Result{Segments: reconstruct(g, cameFrom, to), Cost: cur.g, Expanded: expanded}, true, nil
		}
		if cur.ref.LineKey != to.LineKey &&
			geo.Distance(here.Point(), dest.Point()) < f.opts.GoalRadiusKm &&
			matcher.Same(here.Name, dest.Name) {
			cameFrom[to] = cur.ref
			return Result{Segments: reconstruct(g, cameFrom, to), Cost: cur.g + f.opts.TransferPenalty, Expanded: expanded}, true, nil
		}

		line, _ := g.Line(cur.ref.LineKey)
		factor := 1.0
		if f.opts.IsHighSpeed(line) {
			factor = f.opts.HighSpeedFactor
		}

		relax := func(next network.StationRef, step float64) {
			if visited[next] {
				return
			}
			tentative := cur.g + step
			if prev, ok := gScore[next]; ok && tentative >= prev {
				return
			}
			gScore[next] = tentative
			cameFrom[next] = cur.ref
			push(next, tentative)
		}

		for _, i := range [2]int{cur.ref.Index - 1, cur.ref.Index + 1} {
			if i < 0 || i >= len(line.Stations) {
				continue
			}
			next := network.StationRef{LineKey: cur.ref.LineKey, Index: i}
			relax(next, geo.Distance(here.Point(), line.Stations[i].Point())*factor)
		}
		for _, next := range idx.From(cur.ref) {
			relax(next, f.opts.TransferPenalty)
		}
	}
	return Result{Expanded: expanded}, false, nil
}

// explain decides why the strict search failed by retrying without operator
// compatibility.
func (f *Finder) explain(ctx context.Context, q Query, from, to network.StationRef) error {
	reason := ReasonDisconnected
	if f.relaxed != nil {
		if _, found, err := f.search(ctx, f.relaxed, from, to); err != nil {
			return err
		} else if found {
			reason = ReasonIncompatible
		}
	}

	logging.LogOperation(f.logger, "route_not_found",
		slog.String("from", q.From.String()),
		slog.String("to", q.To.String()),
		slog.String("reason", string(reason)))
	return &NoPathError{From: q.From, To: q.To, Reason: reason}
}

// reconstruct walks the predecessor chain back from end and collapses it
// into one segment per ride. Transfers without a ride in between produce no
// segment.
func reconstruct(g *network.Graph, cameFrom map[network.StationRef]network.StationRef, end network.StationRef) []network.Segment {
	path := []network.StationRef{end}
	for cur := end; ; {
		prev, ok := cameFrom[cur]
		if !ok {
			break
		}
		path = append(path, prev)
		cur = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	segments := []network.Segment{}
	emit := func(first, last network.StationRef) {
		if first.Index == last.Index {
			return
		}
		segments = append(segments, network.Segment{
			LineKey: first.LineKey,
			FromID:  g.At(first).ID,
			ToID:    g.At(last).ID,
		})
	}

	segStart := path[0]
	for i := 1; i < len(path); i++ {
		if path[i].LineKey != path[i-1].LineKey {
			emit(segStart, path[i-1])
			segStart = path[i]
		}
	}
	emit(segStart, path[len(path)-1])
	return segments
}

type node struct {
	ref network.StationRef
	g   float64
	f   float64
	seq int
}

// frontier is a min-heap on f; equal f values pop in insertion order.
type frontier []*node

func (h frontier) Len() int { return len(h) }

func (h frontier) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}

func (h frontier) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *frontier) Push(x any) { *h = append(*h, x.(*node)) }

func (h *frontier) Pop() any {
	old := *h
	n := old[len(old)-1]
	*h = old[:len(old)-1]
	return n
}
