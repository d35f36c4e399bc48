package geometry

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raillog.org/engine/internal/geo"
)

// yamanote is a coarse clockwise loop through the major Yamanote line stations.
var yamanote = orb.LineString{
	{139.767, 35.681}, // Tokyo
	{139.770, 35.692}, // Kanda
	{139.773, 35.698}, // Akihabara
	{139.777, 35.714}, // Ueno
	{139.771, 35.728}, // Nippori
	{139.711, 35.730}, // Ikebukuro
	{139.700, 35.690}, // Shinjuku
	{139.702, 35.658}, // Shibuya
	{139.739, 35.628}, // Shinagawa
	{139.757, 35.655}, // Hamamatsucho
	{139.767, 35.681}, // Tokyo
}

var (
	tokyo        = orb.Point{139.767, 35.681}
	kanda        = orb.Point{139.770, 35.692}
	hamamatsucho = orb.Point{139.757, 35.655}
)

func TestSliceLoopTakesShortArc(t *testing.T) {
	res, ok := Slicer{}.Slice(yamanote, tokyo, kanda)
	require.True(t, ok)
	assert.True(t, res.Loop)
	require.Len(t, res.Parts, 1)

	part := res.Parts[0]
	require.Len(t, part, 2)
	assert.InDelta(t, tokyo.Lat(), part[0].Lat(), 1e-9)
	assert.InDelta(t, kanda.Lat(), part[1].Lat(), 1e-9)
	assert.Less(t, res.Length, 2.0)
}

func TestSliceLoopReverseDirection(t *testing.T) {
	res, ok := Slicer{}.Slice(yamanote, kanda, tokyo)
	require.True(t, ok)
	require.Len(t, res.Parts, 1)
	assert.InDelta(t, kanda.Lat(), res.Parts[0][0].Lat(), 1e-9)
	assert.InDelta(t, tokyo.Lat(), res.Parts[0][len(res.Parts[0])-1].Lat(), 1e-9)
}

func TestSliceLoopAcrossSeam(t *testing.T) {
	res, ok := Slicer{}.Slice(yamanote, hamamatsucho, kanda)
	require.True(t, ok)
	assert.True(t, res.Multi(), "crossing the seam yields two parts")
	require.Len(t, res.Parts, 2)

	first, second := res.Parts[0], res.Parts[1]
	assert.InDelta(t, hamamatsucho.Lat(), first[0].Lat(), 1e-9)
	assert.InDelta(t, tokyo.Lat(), first[len(first)-1].Lat(), 1e-9)
	assert.InDelta(t, tokyo.Lat(), second[0].Lat(), 1e-9)
	assert.InDelta(t, kanda.Lat(), second[len(second)-1].Lat(), 1e-9)

	sum := geo.Length(first) + geo.Length(second)
	assert.InDelta(t, res.Length, sum, 1e-6)
	assert.Less(t, res.Length, geo.Length(yamanote)/2)
}

func TestSliceLoopAcrossSeamBackwards(t *testing.T) {
	res, ok := Slicer{}.Slice(yamanote, kanda, hamamatsucho)
	require.True(t, ok)
	require.Len(t, res.Parts, 2)
	assert.InDelta(t, kanda.Lat(), res.Parts[0][0].Lat(), 1e-9)
	last := res.Parts[1]
	assert.InDelta(t, hamamatsucho.Lat(), last[len(last)-1].Lat(), 1e-9)
}

func TestSliceOpenLine(t *testing.T) {
	line := orb.LineString{{139.0, 35.0}, {139.1, 35.0}, {139.2, 35.0}, {139.3, 35.0}}

	res, ok := Slicer{}.Slice(line, orb.Point{139.25, 35.01}, orb.Point{139.05, 34.99})
	require.True(t, ok)
	assert.False(t, res.Loop)
	require.Len(t, res.Parts, 1)

	part := res.Parts[0]
	require.Len(t, part, 4)
	assert.InDelta(t, 139.25, part[0].Lon(), 1e-6, "snapped start comes first")
	assert.Equal(t, orb.Point{139.2, 35.0}, part[1])
	assert.Equal(t, orb.Point{139.1, 35.0}, part[2])
	assert.InDelta(t, 139.05, part[3].Lon(), 1e-6)
}

func TestSliceOpenLineReversible(t *testing.T) {
	line := orb.LineString{{139.0, 35.0}, {139.05, 35.02}, {139.1, 35.0}, {139.15, 35.03}, {139.2, 35.01}}
	a, b := orb.Point{139.02, 35.02}, orb.Point{139.17, 35.0}

	forward, ok := Slicer{}.Slice(line, a, b)
	require.True(t, ok)
	backward, ok := Slicer{}.Slice(line, b, a)
	require.True(t, ok)

	require.Len(t, forward.Parts, 1)
	require.Len(t, backward.Parts, 1)
	assert.Equal(t, forward.Length, backward.Length)

	reversed := append(orb.LineString(nil), backward.Parts[0]...)
	reversed.Reverse()
	assert.Equal(t, forward.Parts[0], reversed)
	assert.Len(t, forward.Parts[0], 5, "two snapped ends and three interior vertices")
}

func TestSliceRejectsDegenerateLine(t *testing.T) {
	_, ok := Slicer{}.Slice(orb.LineString{{0, 0}}, orb.Point{0, 0}, orb.Point{1, 1})
	assert.False(t, ok)
}
