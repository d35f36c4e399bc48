package models

import (
	"raillog.org/engine/internal/geo"
	"raillog.org/engine/internal/network"
	"raillog.org/engine/internal/routing"
	"raillog.org/engine/internal/utils"
)

// RideEntry describes one ride of a found route.
type RideEntry struct {
	LineKey   string `json:"lineKey"`
	LineName  string `json:"lineName"`
	Color     string `json:"color,omitempty"`
	FromID    string `json:"fromId"`
	FromName  string `json:"fromName"`
	ToID      string `json:"toId"`
	ToName    string `json:"toName"`
	Stops     int    `json:"stops"`
	Direction string `json:"direction"`
	// DistanceKm follows the station sequence, not the track.
	DistanceKm float64 `json:"distanceKm"`
}

// RouteEntry is the body of a successful route search.
type RouteEntry struct {
	Profile    routing.Profile   `json:"profile"`
	Cost       float64           `json:"cost"`
	Transfers  int               `json:"transfers"`
	DistanceKm float64           `json:"distanceKm"`
	Segments   []network.Segment `json:"segments"`
	Rides      []RideEntry       `json:"rides"`
}

// NewRouteEntry describes res against the graph it was found in.
func NewRouteEntry(g *network.Graph, res routing.Result) RouteEntry {
	entry := RouteEntry{
		Profile:  res.Profile,
		Cost:     res.Cost,
		Segments: res.Segments,
		Rides:    make([]RideEntry, 0, len(res.Segments)),
	}
	if len(res.Segments) > 1 {
		entry.Transfers = len(res.Segments) - 1
	}

	for _, seg := range res.Segments {
		ride, ok := newRideEntry(g, seg)
		if !ok {
			continue
		}
		entry.DistanceKm += ride.DistanceKm
		entry.Rides = append(entry.Rides, ride)
	}
	return entry
}

func newRideEntry(g *network.Graph, seg network.Segment) (RideEntry, bool) {
	line, ok := g.Line(seg.LineKey)
	if !ok {
		return RideEntry{}, false
	}
	from, i, ok := line.StationByID(seg.FromID)
	if !ok {
		return RideEntry{}, false
	}
	to, j, ok := line.StationByID(seg.ToID)
	if !ok {
		return RideEntry{}, false
	}

	step := 1
	if j < i {
		step = -1
	}
	km := 0.0
	for k := i; k != j; k += step {
		km += geo.Distance(line.Stations[k].Point(), line.Stations[k+step].Point())
	}

	stops := j - i
	if stops < 0 {
		stops = -stops
	}
	return RideEntry{
		LineKey:    line.Key,
		LineName:   line.Name,
		Color:      line.Color,
		FromID:     from.ID,
		FromName:   from.Name,
		ToID:       to.ID,
		ToName:     to.Name,
		Stops:      stops,
		Direction:  utils.CompassDirection(from.Point(), to.Point()),
		DistanceKm: km,
	}, true
}
