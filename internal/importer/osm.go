package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmxml"

	"raillog.org/engine/internal/logging"
	"raillog.org/engine/internal/network"
)

// RailRouteTypes are the route=* values read as railway lines.
var RailRouteTypes = map[string]bool{
	"train":      true,
	"subway":     true,
	"light_rail": true,
	"monorail":   true,
}

var stopRoles = map[string]bool{
	"stop":            true,
	"stop_entry_only": true,
	"stop_exit_only":  true,
	"station":         true,
}

// DecodeOSM reads OSM XML. Each railway route relation becomes a line; its
// stop nodes, in member order, become stations and its member ways become
// track fragments.
func DecodeOSM(ctx context.Context, r io.Reader, logger *slog.Logger) (Batch, error) {
	nodes := map[osm.NodeID]*osm.Node{}
	ways := map[osm.WayID]*osm.Way{}
	var relations []*osm.Relation

	scanner := osmxml.New(ctx, r)
	defer logging.SafeCloseWithLogging(scanner, logger, "osm scanner")
	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			nodes[o.ID] = o
		case *osm.Way:
			ways[o.ID] = o
		case *osm.Relation:
			if o.Tags.Find("type") == "route" && RailRouteTypes[o.Tags.Find("route")] {
				relations = append(relations, o)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Batch{}, fmt.Errorf("scanning OSM XML: %w", err)
	}

	var batch Batch
	for _, rel := range relations {
		name := rel.Tags.Find("name")
		if name == "" {
			batch.skip(logger, FormatOSM, fmt.Errorf("%w: route relation without name", ErrMalformedFeature),
				slog.Int64("relation", int64(rel.ID)))
			continue
		}
		company := rel.Tags.Find("operator")

		line := network.Record{
			Kind:    network.KindLine,
			Name:    name,
			Company: company,
			Color:   rel.Tags.Find("colour"),
		}
		var stations []network.Record
		for _, m := range rel.Members {
			switch {
			case m.Type == osm.TypeNode && stopRoles[m.Role]:
				n, ok := nodes[osm.NodeID(m.Ref)]
				if !ok || n.Tags.Find("name") == "" {
					batch.skip(logger, FormatOSM, fmt.Errorf("%w: stop node %d missing or unnamed", ErrMalformedFeature, m.Ref),
						slog.Int64("relation", int64(rel.ID)))
					continue
				}
				stations = append(stations, network.Record{
					Kind:    network.KindStation,
					Name:    n.Tags.Find("name"),
					Line:    name,
					Company: company,
					Lat:     n.Lat,
					Lng:     n.Lon,
				})
			case m.Type == osm.TypeWay && (m.Role == "" || m.Role == "route"):
				if ls := wayLine(ways[osm.WayID(m.Ref)], nodes); len(ls) >= 2 {
					line.Geometry = append(line.Geometry, ls)
				}
			}
		}
		batch.Records = append(batch.Records, line)
		batch.Records = append(batch.Records, stations...)
	}
	return batch, nil
}

// wayLine resolves a way's node references to coordinates, dropping nodes
// the file does not contain.
func wayLine(w *osm.Way, nodes map[osm.NodeID]*osm.Node) orb.LineString {
	if w == nil {
		return nil
	}
	ls := make(orb.LineString, 0, len(w.Nodes))
	for _, wn := range w.Nodes {
		if n, ok := nodes[wn.ID]; ok {
			ls = append(ls, n.Point())
		}
	}
	return ls
}
