package importer

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jamespfennell/gtfs"
	"github.com/paulmach/orb"

	"raillog.org/engine/internal/network"
)

// DecodeGTFS reads a static GTFS zip. Each route becomes a line whose
// stations follow the stop sequence of its longest trip; that trip's shape,
// when present, becomes the track geometry.
func DecodeGTFS(data []byte, logger *slog.Logger) (Batch, error) {
	static, err := gtfs.ParseStatic(data, gtfs.ParseStaticOptions{})
	if err != nil {
		return Batch{}, fmt.Errorf("parsing GTFS: %w", err)
	}

	longest := map[string]*gtfs.ScheduledTrip{}
	for i := range static.Trips {
		t := &static.Trips[i]
		if t.Route == nil {
			continue
		}
		if cur, ok := longest[t.Route.Id]; !ok || len(t.StopTimes) > len(cur.StopTimes) {
			longest[t.Route.Id] = t
		}
	}

	var batch Batch
	for i := range static.Routes {
		route := &static.Routes[i]
		name := routeName(route)
		if name == "" {
			batch.skip(logger, FormatGTFS, fmt.Errorf("%w: route without name", ErrMalformedFeature),
				slog.String("route", route.Id))
			continue
		}

		company := ""
		if route.Agency != nil {
			company = route.Agency.Name
		}
		line := network.Record{
			Kind:    network.KindLine,
			Name:    name,
			Company: company,
		}
		if route.Color != "" {
			line.Color = "#" + strings.TrimPrefix(route.Color, "#")
		}

		trip, ok := longest[route.Id]
		if !ok {
			batch.skip(logger, FormatGTFS, fmt.Errorf("%w: route has no trips", ErrMalformedFeature),
				slog.String("route", route.Id))
			continue
		}
		if trip.Shape != nil && len(trip.Shape.Points) >= 2 {
			ls := make(orb.LineString, 0, len(trip.Shape.Points))
			for _, pt := range trip.Shape.Points {
				ls = append(ls, orb.Point{pt.Longitude, pt.Latitude})
			}
			line.Geometry = []orb.LineString{ls}
		}
		batch.Records = append(batch.Records, line)

		stopTimes := append([]gtfs.ScheduledStopTime(nil), trip.StopTimes...)
		sort.SliceStable(stopTimes, func(a, b int) bool {
			return stopTimes[a].StopSequence < stopTimes[b].StopSequence
		})
		for _, st := range stopTimes {
			stop := st.Stop
			if stop != nil && stop.Parent != nil {
				stop = stop.Parent
			}
			if stop == nil || stop.Latitude == nil || stop.Longitude == nil || stop.Name == "" {
				batch.skip(logger, FormatGTFS, fmt.Errorf("%w: stop without name or position", ErrMalformedFeature),
					slog.String("route", route.Id))
				continue
			}
			batch.Records = append(batch.Records, network.Record{
				Kind:    network.KindStation,
				Name:    stop.Name,
				Line:    name,
				Company: company,
				Lat:     *stop.Latitude,
				Lng:     *stop.Longitude,
			})
		}
	}
	return batch, nil
}

func routeName(r *gtfs.Route) string {
	if r.LongName != "" {
		return r.LongName
	}
	return r.ShortName
}
