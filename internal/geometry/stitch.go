// Package geometry turns raw track fragments into the exact polyline ridden
// between two stations.
package geometry

import (
	"math"

	"github.com/paulmach/orb"

	"raillog.org/engine/internal/geo"
)

type joinKind int

const (
	tailToHead joinKind = iota // append as is
	tailToTail                 // reverse, append
	headToTail                 // prepend as is
	headToHead                 // reverse, prepend
)

// Stitch greedily assembles disordered fragments into one continuous polyline.
//
// Fragments with fewer than two points are dropped. The fragment closest to
// start seeds the chain; each step then attaches the remaining fragment whose
// endpoint is nearest to either end of the chain, reversing it when needed.
// Ties go to the earlier fragment, then to the earlier join in the order
// tail-head, tail-tail, head-tail, head-head. Inputs are not modified and
// joint points are kept, so the output has as many points as the kept
// fragments together.
func Stitch(fragments []orb.LineString, start orb.Point) orb.LineString {
	var pool []orb.LineString
	for _, f := range fragments {
		if len(f) >= 2 {
			pool = append(pool, f)
		}
	}

	switch len(pool) {
	case 0:
		return nil
	case 1:
		return append(orb.LineString(nil), pool[0]...)
	}

	seed, seedDist := 0, math.Inf(1)
	for i, f := range pool {
		if d := geo.PointToLineDistance(start, f); d < seedDist {
			seed, seedDist = i, d
		}
	}

	chain := []orb.LineString{pool[seed]}
	pool = append(pool[:seed:seed], pool[seed+1:]...)

	for len(pool) > 0 {
		first := chain[0]
		last := chain[len(chain)-1]
		head := first[0]
		tail := last[len(last)-1]

		best, bestKind, bestDist := -1, tailToHead, math.Inf(1)
		for i, f := range pool {
			candidates := [4]float64{
				tailToHead: geo.Distance(tail, f[0]),
				tailToTail: geo.Distance(tail, f[len(f)-1]),
				headToTail: geo.Distance(head, f[len(f)-1]),
				headToHead: geo.Distance(head, f[0]),
			}
			for kind, d := range candidates {
				if d < bestDist {
					best, bestKind, bestDist = i, joinKind(kind), d
				}
			}
		}
		if best == -1 {
			break
		}

		f := pool[best]
		switch bestKind {
		case tailToHead:
			chain = append(chain, f)
		case tailToTail:
			chain = append(chain, reversed(f))
		case headToTail:
			chain = append([]orb.LineString{f}, chain...)
		case headToHead:
			chain = append([]orb.LineString{reversed(f)}, chain...)
		}
		pool = append(pool[:best:best], pool[best+1:]...)
	}

	var out orb.LineString
	for _, f := range chain {
		out = append(out, f...)
	}
	return out
}

func reversed(ls orb.LineString) orb.LineString {
	out := append(orb.LineString(nil), ls...)
	out.Reverse()
	return out
}
