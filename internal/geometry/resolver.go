package geometry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb"

	"raillog.org/engine/internal/geo"
	"raillog.org/engine/internal/geocache"
	"raillog.org/engine/internal/logging"
	"raillog.org/engine/internal/network"
)

// ErrUnknownSegment is returned when a segment names a line or station the
// graph does not have.
var ErrUnknownSegment = errors.New("unknown segment")

// Resolver turns segments into cached geometries.
type Resolver struct {
	cache  geocache.Cache
	slicer Slicer
	logger *slog.Logger
}

// NewResolver creates a resolver. cache may be nil to disable caching.
func NewResolver(cache geocache.Cache, slicer Slicer, logger *slog.Logger) *Resolver {
	return &Resolver{cache: cache, slicer: slicer, logger: logger}
}

// Resolve returns the geometry ridden along seg. When no track geometry is
// loaded for the line it degrades to the station sequence, or to a straight
// line, and marks the result as a fallback.
func (r *Resolver) Resolve(ctx context.Context, g *network.Graph, seg network.Segment) (geocache.Geometry, error) {
	key := seg.Key()
	if r.cache != nil {
		cached, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			logging.LogError(r.logger, "geometry cache read failed", err,
				slog.String("component", "geometry"),
				slog.String("key", key))
		} else if ok {
			return cached, nil
		}
	}

	geom, err := r.compute(g, seg)
	if err != nil {
		return geocache.Geometry{}, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, geom); err != nil {
			logging.LogError(r.logger, "geometry cache write failed", err,
				slog.String("component", "geometry"),
				slog.String("key", key))
		}
	}
	return geom, nil
}

// ResolveAll resolves each segment in order.
func (r *Resolver) ResolveAll(ctx context.Context, g *network.Graph, segs []network.Segment) ([]geocache.Geometry, error) {
	out := make([]geocache.Geometry, 0, len(segs))
	for _, seg := range segs {
		geom, err := r.Resolve(ctx, g, seg)
		if err != nil {
			return nil, err
		}
		out = append(out, geom)
	}
	return out, nil
}

func (r *Resolver) compute(g *network.Graph, seg network.Segment) (geocache.Geometry, error) {
	line, ok := g.Line(seg.LineKey)
	if !ok {
		return geocache.Geometry{}, fmt.Errorf("%w: line %q", ErrUnknownSegment, seg.LineKey)
	}
	from, fromIdx, ok := line.StationByID(seg.FromID)
	if !ok {
		return geocache.Geometry{}, fmt.Errorf("%w: station %q on %q", ErrUnknownSegment, seg.FromID, seg.LineKey)
	}
	to, toIdx, ok := line.StationByID(seg.ToID)
	if !ok {
		return geocache.Geometry{}, fmt.Errorf("%w: station %q on %q", ErrUnknownSegment, seg.ToID, seg.LineKey)
	}

	features := g.FeaturesFor(line)
	color := lineColor(line, features)

	if track := r.trackFor(line.Key, features, from.Point()); len(track) >= 2 {
		if res, ok := r.slicer.Slice(track, from.Point(), to.Point()); ok {
			parts := make([][][2]float64, len(res.Parts))
			for i, p := range res.Parts {
				parts[i] = geo.LatLng(p)
			}
			return geocache.Geometry{Parts: parts, Color: color, IsMulti: res.Multi()}, nil
		}
	}

	return geocache.Geometry{
		Parts:    [][][2]float64{stationPath(line, fromIdx, toIdx)},
		Color:    color,
		Fallback: true,
	}, nil
}

// trackFor joins every fragment recorded for the line into one polyline.
// Fragments with fewer than two points carry no track and are dropped.
func (r *Resolver) trackFor(lineKey string, features []network.GeoFeature, start orb.Point) orb.LineString {
	var parts []orb.LineString
	dropped := 0
	for _, f := range features {
		for _, p := range f.Parts {
			if len(p) < 2 {
				dropped++
				continue
			}
			parts = append(parts, p)
		}
	}
	if dropped > 0 {
		logging.LogOperation(r.logger, "dropped short track fragments",
			slog.String("component", "geometry"),
			slog.String("line", lineKey),
			slog.Int("dropped", dropped),
			slog.Int("kept", len(parts)))
	}

	switch len(parts) {
	case 0:
		return nil
	case 1:
		return parts[0]
	}

	if stitched := Stitch(parts, start); len(stitched) > 0 {
		return stitched
	}

	var flat orb.LineString
	for _, p := range parts {
		flat = append(flat, p...)
	}
	return flat
}

// stationPath walks the station sequence between two indices. Two equal
// indices produce the degenerate two-point line.
func stationPath(line *network.Line, fromIdx, toIdx int) [][2]float64 {
	step := 1
	if fromIdx > toIdx {
		step = -1
	}

	var out [][2]float64
	for i := fromIdx; i != toIdx+step; i += step {
		s := line.Stations[i]
		out = append(out, [2]float64{s.Lat, s.Lng})
	}
	if len(out) < 2 {
		from, to := line.Stations[fromIdx], line.Stations[toIdx]
		out = [][2]float64{{from.Lat, from.Lng}, {to.Lat, to.Lng}}
	}
	return out
}

func lineColor(line *network.Line, features []network.GeoFeature) string {
	for _, f := range features {
		if f.Color != "" {
			return f.Color
		}
	}
	if line.Color != "" {
		return line.Color
	}
	return geocache.DefaultColor
}
