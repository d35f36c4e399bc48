// Package stats summarises a traveller's trip log.
package stats

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"raillog.org/engine/internal/geo"
	"raillog.org/engine/internal/geocache"
	"raillog.org/engine/internal/geometry"
	"raillog.org/engine/internal/logging"
	"raillog.org/engine/internal/network"
	"raillog.org/engine/internal/projection"
)

// LatestTrips is how many trips get a card in a Summary.
const LatestTrips = 5

// TitleSeparator joins line names in a card title.
const TitleSeparator = " → "

// Trip is one logged journey. Older records carry a single ride in the
// LineKey/FromID/ToID fields instead of Segments.
type Trip struct {
	ID       string            `json:"id"`
	Date     string            `json:"date"`
	Segments []network.Segment `json:"segments,omitempty"`

	LineKey string `json:"lineKey,omitempty"`
	FromID  string `json:"fromId,omitempty"`
	ToID    string `json:"toId,omitempty"`
}

// Legs returns the rides of the trip.
func (t Trip) Legs() []network.Segment {
	if len(t.Segments) > 0 {
		return t.Segments
	}
	if t.LineKey == "" {
		return nil
	}
	return []network.Segment{{LineKey: t.LineKey, FromID: t.FromID, ToID: t.ToID}}
}

// Card is the short rendering of one recent trip.
type Card struct {
	ID         string  `json:"id"`
	Date       string  `json:"date"`
	Title      string  `json:"title"`
	DistanceKm float64 `json:"dist"`
	SVGPoints  string  `json:"svg_points"`
}

// Summary aggregates a trip log.
type Summary struct {
	Count      int     `json:"count"`
	Lines      int     `json:"lines"`
	DistanceKm float64 `json:"dist"`
	Latest     []Card  `json:"latest"`
}

// GeometrySource resolves the geometry of one ride.
type GeometrySource interface {
	Resolve(ctx context.Context, g *network.Graph, seg network.Segment) (geocache.Geometry, error)
}

// Calculator computes thumbnails and trip summaries.
type Calculator struct {
	source GeometrySource
	logger *slog.Logger
}

// NewCalculator creates a calculator backed by source.
func NewCalculator(source GeometrySource, logger *slog.Logger) *Calculator {
	return &Calculator{source: source, logger: logger}
}

// Thumbnail projects the rides of segs. Rides whose line or stations are no
// longer in g are skipped.
func (c *Calculator) Thumbnail(ctx context.Context, g *network.Graph, segs []network.Segment) (projection.Projection, error) {
	var paths []projection.ColoredPath
	for _, seg := range segs {
		geom, ok, err := c.resolve(ctx, g, seg)
		if err != nil {
			return projection.Projection{}, err
		}
		if ok {
			paths = append(paths, projection.FromGeometry(geom)...)
		}
	}
	return projection.Project(paths), nil
}

// Summarize counts trips and distinct lines, totals the distance of every
// ride and renders a card for the first LatestTrips trips. Trips are taken
// to be ordered newest first.
func (c *Calculator) Summarize(ctx context.Context, g *network.Graph, trips []Trip) (Summary, error) {
	sum := Summary{Count: len(trips), Latest: []Card{}}

	lines := map[string]struct{}{}
	for _, t := range trips {
		for _, seg := range t.Legs() {
			lines[seg.LineKey] = struct{}{}
			km, err := c.distance(ctx, g, seg)
			if err != nil {
				return Summary{}, err
			}
			sum.DistanceKm += km
		}
	}
	sum.Lines = len(lines)

	for i, t := range trips {
		if i == LatestTrips {
			break
		}
		legs := t.Legs()
		names := make([]string, len(legs))
		for j, seg := range legs {
			names[j] = seg.LineName()
		}

		thumb, err := c.Thumbnail(ctx, g, legs)
		if err != nil {
			return Summary{}, err
		}
		km, err := c.tripDistance(ctx, g, legs)
		if err != nil {
			return Summary{}, err
		}
		sum.Latest = append(sum.Latest, Card{
			ID:         t.ID,
			Date:       t.Date,
			Title:      strings.Join(names, TitleSeparator),
			DistanceKm: km,
			SVGPoints:  thumb.SVG(),
		})
	}
	return sum, nil
}

func (c *Calculator) tripDistance(ctx context.Context, g *network.Graph, legs []network.Segment) (float64, error) {
	total := 0.0
	for _, seg := range legs {
		km, err := c.distance(ctx, g, seg)
		if err != nil {
			return 0, err
		}
		total += km
	}
	return total, nil
}

// distance is the ridden length of seg, or the straight distance between
// its stations when no geometry can be produced.
func (c *Calculator) distance(ctx context.Context, g *network.Graph, seg network.Segment) (float64, error) {
	geom, ok, err := c.resolve(ctx, g, seg)
	if err != nil {
		return 0, err
	}
	if ok {
		km := 0.0
		for _, part := range geom.Parts {
			km += projection.PathKm(part)
		}
		return km, nil
	}

	from, _, okFrom := g.Station(seg.LineKey, seg.FromID)
	to, _, okTo := g.Station(seg.LineKey, seg.ToID)
	if !okFrom || !okTo {
		return 0, nil
	}
	return geo.Distance(from.Point(), to.Point()), nil
}

// resolve reports ok=false for rides the graph cannot place.
func (c *Calculator) resolve(ctx context.Context, g *network.Graph, seg network.Segment) (geocache.Geometry, bool, error) {
	geom, err := c.source.Resolve(ctx, g, seg)
	switch {
	case err == nil:
		return geom, len(geom.Parts) > 0, nil
	case errors.Is(err, geometry.ErrUnknownSegment):
		logging.LogOperation(c.logger, "stats_segment_skipped",
			slog.String("segment", seg.Key()),
			slog.String("error", err.Error()))
		return geocache.Geometry{}, false, nil
	default:
		return geocache.Geometry{}, false, err
	}
}
