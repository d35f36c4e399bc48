package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raillog.org/engine/internal/network"
)

func stop(company, line, name string, lat, lng float64) network.Record {
	return network.Record{Kind: network.KindStation, Company: company, Line: line, Name: name, Lat: lat, Lng: lng}
}

func newFinder(g *network.Graph, opts Options) *Finder {
	strict := network.NewTransferIndex(g, network.TransferOptions{Strict: true})
	relaxed := network.NewTransferIndex(g, network.TransferOptions{})
	return NewFinder(strict, relaxed, opts, nil)
}

// metroGraph is two lines of one operator crossing at Hub. The two Hub
// platforms are about 100 m apart.
func metroGraph() *network.Graph {
	return network.NewBuilder(nil).AddRecords([]network.Record{
		stop("Metro", "Red", "West", 35.00, 139.00),
		stop("Metro", "Red", "Hub", 35.00, 139.01),
		stop("Metro", "Red", "East", 35.00, 139.02),
		stop("Metro", "Blue", "North", 35.01, 139.01),
		stop("Metro", "Blue", "Hub", 35.0009, 139.01),
		stop("Metro", "Blue", "South", 34.99, 139.01),
	}, "").Build()
}

// centralGraph has two operators whose Central stations are 1.5 km apart,
// plus an unreachable line.
func centralGraph() *network.Graph {
	return network.NewBuilder(nil).AddRecords([]network.Record{
		stop("Alpha", "A", "P", 35.0, 139.00),
		stop("Alpha", "A", "Central", 35.0, 139.02),
		stop("Beta", "B", "Central", 35.0, 139.0365),
		stop("Beta", "B", "Q", 35.0, 139.06),
		stop("Beta", "C", "R", 36.0, 140.00),
		stop("Beta", "C", "S", 36.0, 140.01),
	}, "").Build()
}

func ep(line, station string) Endpoint {
	company, name := network.SplitLineKey(line)
	return Endpoint{LineKey: line, StationID: company + ":" + name + ":" + station}
}

func TestFindRouteSameLine(t *testing.T) {
	f := newFinder(metroGraph(), Options{})

	res, err := f.FindRoute(context.Background(), Query{From: ep("Metro:Red", "West"), To: ep("Metro:Red", "East")})
	require.NoError(t, err)
	assert.Equal(t, []network.Segment{
		{LineKey: "Metro:Red", FromID: "Metro:Red:West", ToID: "Metro:Red:East"},
	}, res.Segments)
	assert.Equal(t, StationProfile, res.Profile)
	assert.InDelta(t, 1.82, res.Cost, 0.01)
	assert.Positive(t, res.Expanded)
}

func TestFindRouteWithTransfer(t *testing.T) {
	f := newFinder(metroGraph(), Options{})

	res, err := f.FindRoute(context.Background(), Query{From: ep("Metro:Red", "West"), To: ep("Metro:Blue", "South")})
	require.NoError(t, err)
	assert.Equal(t, []network.Segment{
		{LineKey: "Metro:Red", FromID: "Metro:Red:West", ToID: "Metro:Red:Hub"},
		{LineKey: "Metro:Blue", FromID: "Metro:Blue:Hub", ToID: "Metro:Blue:South"},
	}, res.Segments)
	assert.InDelta(t, 0.91+DefaultTransferPenalty+1.21, res.Cost, 0.02)
}

func TestFindRouteEndsOnNearbySameNamedStation(t *testing.T) {
	f := newFinder(metroGraph(), Options{})

	res, err := f.FindRoute(context.Background(), Query{From: ep("Metro:Red", "West"), To: ep("Metro:Blue", "Hub")})
	require.NoError(t, err)
	assert.Equal(t, []network.Segment{
		{LineKey: "Metro:Red", FromID: "Metro:Red:West", ToID: "Metro:Red:Hub"},
	}, res.Segments)
	assert.InDelta(t, 0.91+DefaultTransferPenalty, res.Cost, 0.01)
}

func TestFindRouteToItself(t *testing.T) {
	f := newFinder(metroGraph(), Options{})

	res, err := f.FindRoute(context.Background(), Query{From: ep("Metro:Red", "Hub"), To: ep("Metro:Red", "Hub")})
	require.NoError(t, err)
	assert.NotNil(t, res.Segments)
	assert.Empty(t, res.Segments)
	assert.Zero(t, res.Cost)
}

func TestFindRouteIncompatibleOperators(t *testing.T) {
	f := newFinder(centralGraph(), Options{})

	_, err := f.FindRoute(context.Background(), Query{From: ep("Alpha:A", "P"), To: ep("Beta:B", "Q")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoPath))

	var npe *NoPathError
	require.True(t, errors.As(err, &npe))
	assert.Equal(t, ReasonIncompatible, npe.Reason)
	assert.Contains(t, err.Error(), "incompatible operators")
}

func TestFindRouteDisconnected(t *testing.T) {
	f := newFinder(centralGraph(), Options{})

	_, err := f.FindRoute(context.Background(), Query{From: ep("Alpha:A", "P"), To: ep("Beta:C", "S")})
	var npe *NoPathError
	require.True(t, errors.As(err, &npe))
	assert.Equal(t, ReasonDisconnected, npe.Reason)
}

func TestFindRouteWithoutRelaxedIndexReportsDisconnected(t *testing.T) {
	g := centralGraph()
	f := NewFinder(network.NewTransferIndex(g, network.TransferOptions{Strict: true}), nil, Options{}, nil)

	_, err := f.FindRoute(context.Background(), Query{From: ep("Alpha:A", "P"), To: ep("Beta:B", "Q")})
	var npe *NoPathError
	require.True(t, errors.As(err, &npe))
	assert.Equal(t, ReasonDisconnected, npe.Reason)
}

func TestFindRouteInvalidQuery(t *testing.T) {
	f := newFinder(metroGraph(), Options{})

	tests := []struct {
		name string
		q    Query
	}{
		{"unknown origin line", Query{From: ep("Metro:Green", "West"), To: ep("Metro:Red", "East")}},
		{"unknown origin station", Query{From: ep("Metro:Red", "Nowhere"), To: ep("Metro:Red", "East")}},
		{"unknown destination", Query{From: ep("Metro:Red", "West"), To: ep("Metro:Blue", "West")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Find(context.Background(), tt.q)
			assert.True(t, errors.Is(err, ErrInvalidQuery))
			assert.False(t, errors.Is(err, ErrNoPath))
		})
	}
}

func TestFindRouteIsDeterministic(t *testing.T) {
	f := newFinder(metroGraph(), Options{})
	q := Query{From: ep("Metro:Blue", "North"), To: ep("Metro:Red", "East")}

	first, err := f.FindRoute(context.Background(), q)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := f.FindRoute(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestFindRouteCancelled(t *testing.T) {
	f := newFinder(metroGraph(), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.FindRoute(ctx, Query{From: ep("Metro:Red", "West"), To: ep("Metro:Blue", "South")})
	assert.True(t, errors.Is(err, context.Canceled))

	_, err = f.FindLines(ctx, Query{From: ep("Metro:Red", "West"), To: ep("Metro:Blue", "South")})
	assert.True(t, errors.Is(err, context.Canceled))
}

// shinkansenGraph offers a direct conventional line between X and Y and a
// longer high-speed detour between the same stations.
func shinkansenGraph() *network.Graph {
	return network.NewBuilder(nil).AddRecords([]network.Record{
		stop("JR東日本", "東海道線", "X", 35.0, 139.0),
		stop("JR東日本", "東海道線", "Y", 35.0, 139.5),
		stop("JR東日本", "東海道新幹線", "X", 35.0005, 139.0),
		stop("JR東日本", "東海道新幹線", "M", 35.1, 139.25),
		stop("JR東日本", "東海道新幹線", "Y", 35.0005, 139.5),
	}, "").Build()
}

func TestFindRouteHighSpeedFactor(t *testing.T) {
	g := shinkansenGraph()
	q := Query{From: ep("JR東日本:東海道線", "X"), To: ep("JR東日本:東海道線", "Y")}

	plain, err := newFinder(g, Options{}).FindRoute(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []network.Segment{
		{LineKey: "JR東日本:東海道線", FromID: "JR東日本:東海道線:X", ToID: "JR東日本:東海道線:Y"},
	}, plain.Segments)

	fast, err := newFinder(g, Options{HighSpeedFactor: 0.5}).FindRoute(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []network.Segment{
		{LineKey: "JR東日本:東海道新幹線", FromID: "JR東日本:東海道新幹線:X", ToID: "JR東日本:東海道新幹線:Y"},
	}, fast.Segments)
	assert.Less(t, fast.Cost, plain.Cost)
}

func TestFindLines(t *testing.T) {
	f := newFinder(metroGraph(), Options{})

	res, err := f.Find(context.Background(), Query{
		From:    ep("Metro:Red", "West"),
		To:      ep("Metro:Blue", "South"),
		Profile: LineLevelProfile,
	})
	require.NoError(t, err)
	assert.Equal(t, LineLevelProfile, res.Profile)
	assert.Equal(t, []network.Segment{
		{LineKey: "Metro:Red", FromID: "Metro:Red:West", ToID: "Metro:Red:Hub"},
		{LineKey: "Metro:Blue", FromID: "Metro:Blue:Hub", ToID: "Metro:Blue:South"},
	}, res.Segments)
}

func TestFindLinesSameLine(t *testing.T) {
	f := newFinder(metroGraph(), Options{})

	res, err := f.FindLines(context.Background(), Query{From: ep("Metro:Red", "East"), To: ep("Metro:Red", "West")})
	require.NoError(t, err)
	assert.Equal(t, []network.Segment{
		{LineKey: "Metro:Red", FromID: "Metro:Red:East", ToID: "Metro:Red:West"},
	}, res.Segments)
}

func TestFindLinesNoPath(t *testing.T) {
	f := newFinder(centralGraph(), Options{})

	_, err := f.FindLines(context.Background(), Query{From: ep("Alpha:A", "P"), To: ep("Beta:B", "Q")})
	var npe *NoPathError
	require.True(t, errors.As(err, &npe))
	assert.Equal(t, ReasonIncompatible, npe.Reason)

	_, err = f.FindLines(context.Background(), Query{From: ep("Alpha:A", "P"), To: ep("Beta:C", "R")})
	require.True(t, errors.As(err, &npe))
	assert.Equal(t, ReasonDisconnected, npe.Reason)
}

func TestFindLinesAnyOperator(t *testing.T) {
	q := Query{From: ep("Alpha:A", "P"), To: ep("Beta:B", "Q")}

	f := newFinder(centralGraph(), Options{LineLevelAnyOperator: true})
	res, err := f.FindLines(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []network.Segment{
		{LineKey: "Alpha:A", FromID: "Alpha:A:P", ToID: "Alpha:A:Central"},
		{LineKey: "Beta:B", FromID: "Beta:B:Central", ToID: "Beta:B:Q"},
	}, res.Segments)

	_, err = f.FindLines(context.Background(), Query{From: ep("Alpha:A", "P"), To: ep("Beta:C", "R")})
	var npe *NoPathError
	require.True(t, errors.As(err, &npe))
	assert.Equal(t, ReasonDisconnected, npe.Reason)

	_, err = f.FindRoute(context.Background(), q)
	require.True(t, errors.As(err, &npe))
	assert.Equal(t, ReasonIncompatible, npe.Reason, "station-level search stays strict")

	strictOnly := NewFinder(network.NewTransferIndex(centralGraph(), network.TransferOptions{Strict: true}), nil,
		Options{LineLevelAnyOperator: true}, nil)
	_, err = strictOnly.FindLines(context.Background(), q)
	require.True(t, errors.As(err, &npe))
	assert.Equal(t, ReasonDisconnected, npe.Reason, "no relaxed index to plan with")
}
