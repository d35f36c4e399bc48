package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineKm(t *testing.T) {
	tests := []struct {
		name     string
		lat1     float64
		lng1     float64
		lat2     float64
		lng2     float64
		expected float64
		delta    float64
	}{
		{"same point", 35.681, 139.767, 35.681, 139.767, 0, 1e-9},
		{"Tokyo to Kanda", 35.681, 139.767, 35.692, 139.770, 1.25, 0.05},
		{"one degree of latitude", 0, 0, 1, 0, 111.19, 0.01},
		{"Tokyo to Osaka", 35.681, 139.767, 34.702, 135.496, 403, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, HaversineKm(tt.lat1, tt.lng1, tt.lat2, tt.lng2), tt.delta)
		})
	}
}

func TestLength(t *testing.T) {
	ls := orb.LineString{{0, 0}, {0, 1}, {0, 2}}
	assert.InDelta(t, 2*111.19, Length(ls), 0.05)
	assert.Equal(t, 0.0, Length(orb.LineString{{1, 1}}))
}

func TestProjectOnSegment(t *testing.T) {
	a := orb.Point{0, 0}
	b := orb.Point{10, 0}

	p, tt := ProjectOnSegment(orb.Point{5, 3}, a, b)
	assert.Equal(t, orb.Point{5, 0}, p)
	assert.InDelta(t, 0.5, tt, 1e-12)

	p, tt = ProjectOnSegment(orb.Point{-4, 1}, a, b)
	assert.Equal(t, a, p, "clamped to the segment start")
	assert.Equal(t, 0.0, tt)

	p, tt = ProjectOnSegment(orb.Point{14, -1}, a, b)
	assert.Equal(t, b, p, "clamped to the segment end")
	assert.Equal(t, 1.0, tt)

	p, _ = ProjectOnSegment(orb.Point{3, 3}, a, a)
	assert.Equal(t, a, p, "degenerate segment")

	end := orb.Point{139.767, 35.692}
	p, tt = ProjectOnSegment(end, orb.Point{35.681, 139.767}, end)
	assert.Equal(t, end, p, "endpoint is returned exactly")
	assert.Equal(t, 1.0, tt)
}

func TestPointToLineDistance(t *testing.T) {
	ls := orb.LineString{{0, 0}, {1, 0}}
	assert.InDelta(t, 0, PointToLineDistance(orb.Point{0.5, 0}, ls), 1e-9)
	assert.InDelta(t, 111.19, PointToLineDistance(orb.Point{0.5, 1}, ls), 0.05)
	assert.True(t, math.IsInf(PointToLineDistance(orb.Point{0, 0}, nil), 1))
}

func TestNearestOnLine(t *testing.T) {
	ls := orb.LineString{{0, 0}, {0, 1}, {0, 2}}

	loc := NearestOnLine(ls, orb.Point{0.1, 1.5})
	assert.Equal(t, 1, loc.Index)
	assert.InDelta(t, 1.5, loc.Point.Lat(), 1e-9)
	assert.InDelta(t, 1.5*111.19, loc.Along, 0.1)
}

func TestNearestOnLineClosedLoopPrefersFirstVertex(t *testing.T) {
	loop := orb.LineString{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	loc := NearestOnLine(loop, orb.Point{0, 0})
	assert.Equal(t, 0, loc.Index)
	assert.Equal(t, 0.0, loc.Along)
}

func TestSliceAlong(t *testing.T) {
	ls := orb.LineString{{0, 0}, {0, 1}, {0, 2}, {0, 3}}
	unit := Distance(ls[0], ls[1])

	t.Run("forward", func(t *testing.T) {
		out := SliceAlong(ls, 0.5*unit, 2.5*unit)
		require.Len(t, out, 4)
		assert.InDelta(t, 0.5, out[0].Lat(), 1e-9)
		assert.Equal(t, orb.Point{0, 1}, out[1])
		assert.Equal(t, orb.Point{0, 2}, out[2])
		assert.InDelta(t, 2.5, out[3].Lat(), 1e-9)
	})

	t.Run("reversed", func(t *testing.T) {
		out := SliceAlong(ls, 2.5*unit, 0.5*unit)
		require.Len(t, out, 4)
		assert.InDelta(t, 2.5, out[0].Lat(), 1e-9)
		assert.InDelta(t, 0.5, out[3].Lat(), 1e-9)
	})

	t.Run("does not mutate input", func(t *testing.T) {
		before := append(orb.LineString(nil), ls...)
		SliceAlong(ls, 3*unit, 0)
		assert.Equal(t, before, ls)
	})
}

func TestLatLng(t *testing.T) {
	assert.Equal(t, [][2]float64{{35.6, 139.7}}, LatLng(orb.LineString{{139.7, 35.6}}))
}
