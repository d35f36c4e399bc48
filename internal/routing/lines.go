package routing

import (
	"container/heap"
	"context"
	"log/slog"

	"raillog.org/engine/internal/network"
)

// FindLines plans over line adjacency: it looks for a short chain of lines,
// rewarding high-speed lines and reaching the destination line, and only then
// picks the first transfer station between consecutive lines.
//
// Like FindRoute it only transfers between compatible operators, unless
// Options.LineLevelAnyOperator is set and a relaxed index is available.
func (f *Finder) FindLines(ctx context.Context, q Query) (Result, error) {
	idx := f.strict
	if f.opts.LineLevelAnyOperator && f.relaxed != nil {
		idx = f.relaxed
	}
	g := idx.Graph()
	from, to, err := resolveEndpoints(g, q)
	if err != nil {
		return Result{}, err
	}

	chain, expanded, err := f.lineChain(ctx, idx, from.LineKey, to.LineKey)
	if err != nil {
		return Result{}, err
	}
	if chain == nil {
		reason := ReasonDisconnected
		if f.relaxed != nil && idx != f.relaxed {
			if alt, _, err := f.lineChain(ctx, f.relaxed, from.LineKey, to.LineKey); err != nil {
				return Result{}, err
			} else if alt != nil {
				reason = ReasonIncompatible
			}
		}
		return Result{}, &NoPathError{From: q.From, To: q.To, Reason: reason}
	}

	segments := []network.Segment{}
	cur := from
	for i, lineKey := range chain {
		end := to
		var next network.StationRef
		if i+1 < len(chain) {
			exit, entry, ok := idx.FirstTransfer(lineKey, chain[i+1])
			if !ok {
				return Result{}, &NoPathError{From: q.From, To: q.To, Reason: ReasonDisconnected}
			}
			end, next = exit, entry
		}
		if cur.Index != end.Index {
			segments = append(segments, network.Segment{
				LineKey: lineKey,
				FromID:  g.At(cur).ID,
				ToID:    g.At(end).ID,
			})
		}
		cur = next
	}

	if f.logger != nil {
		f.logger.Debug("line-level route search",
			slog.String("from", q.From.String()),
			slog.String("to", q.To.String()),
			slog.Int("lines", len(chain)),
			slog.Int("expanded", expanded))
	}
	return Result{Segments: segments, Profile: LineLevelProfile, Expanded: expanded}, nil
}

// lineChain returns the best chain of line keys from start to goal, or nil.
func (f *Finder) lineChain(ctx context.Context, idx *network.TransferIndex, start, goal string) ([]string, int, error) {
	g := idx.Graph()
	score := func(path []string) int {
		s := len(path)
		for _, key := range path {
			if l, ok := g.Line(key); ok && f.opts.IsHighSpeed(l) {
				s -= 10
			}
		}
		if path[len(path)-1] == goal {
			s -= 100
		}
		return s
	}

	queue := &lineQueue{}
	seq := 0
	push := func(path []string) {
		heap.Push(queue, &lineItem{path: path, score: score(path), seq: seq})
		seq++
	}
	push([]string{start})
	visited := map[string]bool{start: true}

	expanded := 0
	for queue.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, expanded, err
		}
		item := heap.Pop(queue).(*lineItem)
		expanded++
		if len(item.path) > f.opts.MaxLineDepth {
			continue
		}

		last := item.path[len(item.path)-1]
		if last == goal {
			return item.path, expanded, nil
		}

		for _, next := range idx.Lines(last) {
			if visited[next] {
				continue
			}
			visited[next] = true
			path := append(append([]string(nil), item.path...), next)
			push(path)
		}
	}
	return nil, expanded, nil
}

type lineItem struct {
	path  []string
	score int
	seq   int
}

type lineQueue []*lineItem

func (q lineQueue) Len() int { return len(q) }

func (q lineQueue) Less(i, j int) bool {
	if q[i].score != q[j].score {
		return q[i].score < q[j].score
	}
	return q[i].seq < q[j].seq
}

func (q lineQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *lineQueue) Push(x any) { *q = append(*q, x.(*lineItem)) }

func (q *lineQueue) Pop() any {
	old := *q
	it := old[len(old)-1]
	*q = old[:len(old)-1]
	return it
}
