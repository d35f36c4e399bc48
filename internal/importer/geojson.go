package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"raillog.org/engine/internal/network"
)

// GeoJSON feature property names.
const (
	propType      = "type"
	propName      = "name"
	propLine      = "line"
	propID        = "id"
	propCompany   = "company"
	propOperator  = "operator"
	propIcon      = "icon"
	propStroke    = "stroke"
	propColor     = "color"
	propTransfers = "transfers"
	propHighSpeed = "high_speed"
)

// DecodeGeoJSON reads a FeatureCollection of "line" and "station" features.
// Line features carry the track as a LineString or MultiLineString; station
// features are Points naming their line. Features are decoded one at a time,
// so a feature with unparseable geometry or properties is skipped rather than
// failing the whole collection.
func DecodeGeoJSON(data []byte, logger *slog.Logger) (Batch, error) {
	var doc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Batch{}, fmt.Errorf("parsing feature collection: %w", err)
	}
	if doc.Type != "FeatureCollection" {
		return Batch{}, fmt.Errorf("parsing feature collection: unexpected type %q", doc.Type)
	}

	var batch Batch
	for i, raw := range doc.Features {
		f, err := geojson.UnmarshalFeature(raw)
		if err != nil {
			batch.skip(logger, FormatGeoJSON, fmt.Errorf("%w: %v", ErrMalformedFeature, err), slog.Int("feature", i))
			continue
		}
		rec, err := featureRecord(f)
		if err != nil {
			batch.skip(logger, FormatGeoJSON, err, slog.Int("feature", i))
			continue
		}
		batch.Records = append(batch.Records, rec)
	}
	return batch, nil
}

func featureRecord(f *geojson.Feature) (network.Record, error) {
	p := f.Properties
	rec := network.Record{
		Name:     p.MustString(propName, ""),
		Company:  p.MustString(propCompany, ""),
		Operator: p.MustString(propOperator, ""),
		Icon:     p.MustString(propIcon, ""),
	}

	switch kind := p.MustString(propType, ""); kind {
	case "line":
		rec.Kind = network.KindLine
		if rec.Name == "" {
			return rec, fmt.Errorf("%w: line without name", ErrMalformedFeature)
		}
		rec.Color = p.MustString(propStroke, p.MustString(propColor, ""))
		rec.HighSpeed = p.MustBool(propHighSpeed, false)

		switch g := f.Geometry.(type) {
		case orb.LineString:
			rec.Geometry = []orb.LineString{g}
		case orb.MultiLineString:
			rec.Geometry = append(rec.Geometry, g...)
		case nil:
		default:
			return rec, fmt.Errorf("%w: line %q has %s geometry", ErrMalformedFeature, rec.Name, g.GeoJSONType())
		}

	case "station":
		rec.Kind = network.KindStation
		rec.Line = p.MustString(propLine, "")
		rec.ID = stringProp(p, propID)
		if rec.Name == "" || rec.Line == "" {
			return rec, fmt.Errorf("%w: station needs name and line", ErrMalformedFeature)
		}
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			return rec, fmt.Errorf("%w: station %q is not a point", ErrMalformedFeature, rec.Name)
		}
		rec.Lat, rec.Lng = pt.Lat(), pt.Lon()

		transfers, err := stringList(p[propTransfers])
		if err != nil {
			return rec, fmt.Errorf("%w: station %q: %v", ErrMalformedFeature, rec.Name, err)
		}
		rec.Transfers = transfers

	default:
		return rec, fmt.Errorf("%w: unknown type %q", ErrMalformedFeature, kind)
	}
	return rec, nil
}

// stringProp reads a property that may be a string or a number.
func stringProp(p geojson.Properties, key string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%v", v)
	default:
		return ""
	}
}

func stringList(v any) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, errors.New("transfers must be a list")
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			return nil, fmt.Errorf("transfer %v is not a line key", it)
		}
		out = append(out, s)
	}
	return out, nil
}
