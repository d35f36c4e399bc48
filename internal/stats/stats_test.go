package stats

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raillog.org/engine/internal/geo"
	"raillog.org/engine/internal/geocache"
	"raillog.org/engine/internal/geometry"
	"raillog.org/engine/internal/network"
)

func metro() *network.Graph {
	rec := func(line, name string, lat, lng float64) network.Record {
		return network.Record{Kind: network.KindStation, Line: line, Name: name, Lat: lat, Lng: lng}
	}
	return network.NewBuilder(nil).AddRecords([]network.Record{
		rec("Red", "West", 35.00, 139.00),
		rec("Red", "Hub", 35.00, 139.01),
		rec("Red", "East", 35.00, 139.02),
		rec("Blue", "North", 35.01, 139.01),
		rec("Blue", "South", 34.99, 139.01),
	}, "Metro").Build()
}

var (
	redRide  = network.Segment{LineKey: "Metro:Red", FromID: "Metro:Red:West", ToID: "Metro:Red:East"}
	blueRide = network.Segment{LineKey: "Metro:Blue", FromID: "Metro:Blue:North", ToID: "Metro:Blue:South"}
	goneRide = network.Segment{LineKey: "Metro:Gone", FromID: "a", ToID: "b"}
)

func TestTripLegs(t *testing.T) {
	assert.Equal(t, []network.Segment{redRide}, Trip{Segments: []network.Segment{redRide}}.Legs())
	assert.Equal(t, []network.Segment{blueRide},
		Trip{LineKey: blueRide.LineKey, FromID: blueRide.FromID, ToID: blueRide.ToID}.Legs())
	assert.Nil(t, Trip{}.Legs())
}

func TestSummarize(t *testing.T) {
	calc := NewCalculator(geometry.NewResolver(nil, geometry.Slicer{}, nil), nil)
	trips := []Trip{
		{ID: "3", Date: "2026-03-01", Segments: []network.Segment{redRide, blueRide}},
		{ID: "2", Date: "2026-02-01", LineKey: blueRide.LineKey, FromID: blueRide.FromID, ToID: blueRide.ToID},
		{ID: "1", Date: "2026-01-01", Segments: []network.Segment{goneRide}},
	}

	sum, err := calc.Summarize(context.Background(), metro(), trips)
	require.NoError(t, err)

	redKm := geo.HaversineKm(35, 139, 35, 139.02)
	blueKm := geo.HaversineKm(35.01, 139.01, 34.99, 139.01)

	assert.Equal(t, 3, sum.Count)
	assert.Equal(t, 3, sum.Lines)
	assert.InDelta(t, redKm+2*blueKm, sum.DistanceKm, 1e-6)

	require.Len(t, sum.Latest, 3)
	assert.Equal(t, "Red → Blue", sum.Latest[0].Title)
	assert.Equal(t, "3", sum.Latest[0].ID)
	assert.Equal(t, "2026-03-01", sum.Latest[0].Date)
	assert.InDelta(t, redKm+blueKm, sum.Latest[0].DistanceKm, 1e-6)
	assert.Contains(t, sum.Latest[0].SVGPoints, "M ")

	assert.Equal(t, "Blue", sum.Latest[1].Title)
	assert.Equal(t, "Gone", sum.Latest[2].Title)
	assert.Zero(t, sum.Latest[2].DistanceKm)
	assert.Empty(t, sum.Latest[2].SVGPoints)
}

func TestSummarizeKeepsLatestFive(t *testing.T) {
	calc := NewCalculator(geometry.NewResolver(nil, geometry.Slicer{}, nil), nil)
	var trips []Trip
	for i := 0; i < 7; i++ {
		trips = append(trips, Trip{ID: fmt.Sprint(i), Segments: []network.Segment{redRide}})
	}

	sum, err := calc.Summarize(context.Background(), metro(), trips)
	require.NoError(t, err)
	assert.Equal(t, 7, sum.Count)
	assert.Equal(t, 1, sum.Lines)
	require.Len(t, sum.Latest, LatestTrips)
	assert.Equal(t, "4", sum.Latest[4].ID)
}

func TestSummarizeEmpty(t *testing.T) {
	calc := NewCalculator(geometry.NewResolver(nil, geometry.Slicer{}, nil), nil)
	sum, err := calc.Summarize(context.Background(), metro(), nil)
	require.NoError(t, err)
	assert.Zero(t, sum.Count)
	assert.NotNil(t, sum.Latest)
}

type stubSource struct {
	geom geocache.Geometry
	err  error
}

func (s stubSource) Resolve(context.Context, *network.Graph, network.Segment) (geocache.Geometry, error) {
	return s.geom, s.err
}

func TestSummarizeFallsBackToStationDistance(t *testing.T) {
	calc := NewCalculator(stubSource{}, nil)
	sum, err := calc.Summarize(context.Background(), metro(), []Trip{{Segments: []network.Segment{redRide}}})
	require.NoError(t, err)
	assert.InDelta(t, geo.HaversineKm(35, 139, 35, 139.02), sum.DistanceKm, 1e-9)
}

func TestSummarizePropagatesSourceErrors(t *testing.T) {
	boom := errors.New("cache offline")
	calc := NewCalculator(stubSource{err: boom}, nil)
	_, err := calc.Summarize(context.Background(), metro(), []Trip{{Segments: []network.Segment{redRide}}})
	assert.ErrorIs(t, err, boom)
}

func TestThumbnail(t *testing.T) {
	calc := NewCalculator(geometry.NewResolver(nil, geometry.Slicer{}, nil), nil)
	thumb, err := calc.Thumbnail(context.Background(), metro(), []network.Segment{redRide, blueRide, goneRide})
	require.NoError(t, err)
	require.Len(t, thumb.Paths, 2)
	assert.Equal(t, geocache.DefaultColor, thumb.Paths[0].Color)
	assert.Positive(t, thumb.TotalKm)
}
