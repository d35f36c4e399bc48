// Package network models a multi-operator rail network as an immutable snapshot.
//
// A Graph is built once by a Builder and never mutated afterwards. Merging new
// data (operator metadata, more lines, more track geometry) goes through
// NewBuilder(previous) and produces a fresh Graph, so a route search always
// sees one consistent network.
package network

import (
	"sort"
	"strings"

	"github.com/paulmach/orb"
)

// Station is a stop on exactly one Line. Name is the join key across lines.
type Station struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Transfers []string `json:"transfers,omitempty"`
}

// Point returns the station position as an orb point.
func (s Station) Point() orb.Point {
	return orb.Point{s.Lng, s.Lat}
}

// LineMeta describes the operator of a line.
type LineMeta struct {
	Company string `json:"company"`
	Type    string `json:"type"`
	Region  string `json:"region"`
	Logo    string `json:"logo,omitempty"`
	Icon    string `json:"icon,omitempty"`
}

// Line is an ordered station sequence; index adjacency is physical adjacency.
type Line struct {
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	HighSpeed bool      `json:"highSpeed,omitempty"`
	Meta      LineMeta  `json:"meta"`
	Stations  []Station `json:"stations"`

	byID map[string]int
}

// StationByID returns the station with the given id and its index.
func (l *Line) StationByID(id string) (Station, int, bool) {
	if l.byID != nil {
		if i, ok := l.byID[id]; ok {
			return l.Stations[i], i, true
		}
		return Station{}, -1, false
	}
	for i, s := range l.Stations {
		if s.ID == id {
			return s, i, true
		}
	}
	return Station{}, -1, false
}

// StationByName returns the first station on the line with the given name.
func (l *Line) StationByName(name string) (Station, int, bool) {
	for i, s := range l.Stations {
		if s.Name == name {
			return s, i, true
		}
	}
	return Station{}, -1, false
}

func (l *Line) reindex() {
	l.byID = make(map[string]int, len(l.Stations))
	for i, s := range l.Stations {
		if _, dup := l.byID[s.ID]; !dup {
			l.byID[s.ID] = i
		}
	}
}

// LineKey builds the "<operator>:<line>" key.
func LineKey(company, lineName string) string {
	return company + ":" + lineName
}

// SplitLineKey splits a line key into operator and line name.
func SplitLineKey(key string) (string, string) {
	company, lineName, found := strings.Cut(key, ":")
	if !found {
		return "", key
	}
	return company, lineName
}

// StationRef addresses a station by line and index.
type StationRef struct {
	LineKey string `json:"lineKey"`
	Index   int    `json:"index"`
}

// GeoFeature is the raw track geometry of one line. Each part is a polyline in
// [lng, lat] order; a LineString has one part, a MultiLineString several.
type GeoFeature struct {
	Company  string
	LineName string
	Color    string
	Parts    []orb.LineString
}

// CompanyInfo is one row of the operator metadata table.
type CompanyInfo struct {
	Region string `json:"region" yaml:"region"`
	Type   string `json:"type" yaml:"type"`
	Logo   string `json:"logo,omitempty" yaml:"logo,omitempty"`
}

// Graph is an immutable network snapshot.
type Graph struct {
	lines     map[string]*Line
	keys      []string
	byName    map[string][]StationRef
	features  []GeoFeature
	companies map[string]CompanyInfo
}

// Empty returns a graph with no lines.
func Empty() *Graph {
	return &Graph{
		lines:     map[string]*Line{},
		byName:    map[string][]StationRef{},
		companies: map[string]CompanyInfo{},
	}
}

// Line returns the line with the given key.
func (g *Graph) Line(key string) (*Line, bool) {
	l, ok := g.lines[key]
	return l, ok
}

// Lines returns every line ordered by key.
func (g *Graph) Lines() []*Line {
	out := make([]*Line, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, g.lines[k])
	}
	return out
}

// LineCount returns the number of lines.
func (g *Graph) LineCount() int {
	return len(g.keys)
}

// StationCount returns the number of stations across all lines.
func (g *Graph) StationCount() int {
	n := 0
	for _, l := range g.lines {
		n += len(l.Stations)
	}
	return n
}

// Station looks up a station by line key and station id.
func (g *Graph) Station(lineKey, id string) (Station, int, bool) {
	l, ok := g.lines[lineKey]
	if !ok {
		return Station{}, -1, false
	}
	return l.StationByID(id)
}

// At dereferences a StationRef.
func (g *Graph) At(ref StationRef) Station {
	return g.lines[ref.LineKey].Stations[ref.Index]
}

// StationsNamed returns every station with exactly this name, ordered by line key.
func (g *Graph) StationsNamed(name string) []StationRef {
	return g.byName[name]
}

// Features returns all loaded track geometries.
func (g *Graph) Features() []GeoFeature {
	return g.features
}

// FeaturesFor returns the geometries recorded for a line, matched on company and line name.
func (g *Graph) FeaturesFor(l *Line) []GeoFeature {
	var out []GeoFeature
	for _, f := range g.features {
		if f.Company == l.Meta.Company && f.LineName == l.Name {
			out = append(out, f)
		}
	}
	return out
}

// Companies returns the operator metadata table.
func (g *Graph) Companies() map[string]CompanyInfo {
	return g.companies
}

func (g *Graph) index() {
	g.keys = g.keys[:0]
	for k := range g.lines {
		g.keys = append(g.keys, k)
	}
	sort.Strings(g.keys)

	g.byName = make(map[string][]StationRef)
	for _, k := range g.keys {
		l := g.lines[k]
		l.reindex()
		for i, s := range l.Stations {
			g.byName[s.Name] = append(g.byName[s.Name], StationRef{LineKey: k, Index: i})
		}
	}
}
