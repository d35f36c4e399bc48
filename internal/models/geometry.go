package models

import (
	"github.com/twpayne/go-polyline"

	"raillog.org/engine/internal/geocache"
)

// GeometryEntry is the track of one ride, as [lat, lng] parts and as
// encoded polylines.
type GeometryEntry struct {
	Key       string         `json:"key"`
	Coords    [][][2]float64 `json:"coords"`
	Polylines []string       `json:"polylines"`
	Color     string         `json:"color"`
	IsMulti   bool           `json:"isMulti"`
	Fallback  bool           `json:"fallback"`
}

func NewGeometryEntry(key string, g geocache.Geometry) GeometryEntry {
	entry := GeometryEntry{
		Key:       key,
		Coords:    g.Parts,
		Polylines: make([]string, 0, len(g.Parts)),
		Color:     g.Color,
		IsMulti:   g.IsMulti,
		Fallback:  g.Fallback,
	}
	for _, part := range g.Parts {
		coords := make([][]float64, len(part))
		for i, c := range part {
			coords[i] = []float64{c[0], c[1]}
		}
		entry.Polylines = append(entry.Polylines, string(polyline.EncodeCoords(coords)))
	}
	return entry
}
