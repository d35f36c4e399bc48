package geometry

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStitchSingleFragment(t *testing.T) {
	frag := orb.LineString{{0, 0}, {0.1, 0}, {0.2, 0}}
	out := Stitch([]orb.LineString{frag}, orb.Point{5, 5})
	assert.Equal(t, frag, out)
}

func TestStitchDropsShortFragments(t *testing.T) {
	assert.Nil(t, Stitch([]orb.LineString{{{0, 0}}, nil}, orb.Point{0, 0}))

	out := Stitch([]orb.LineString{{{0, 0}}, {{1, 0}, {2, 0}}}, orb.Point{0, 0})
	assert.Equal(t, orb.LineString{{1, 0}, {2, 0}}, out)
}

func TestStitchOrdersAndOrientsFragments(t *testing.T) {
	// A straight east-west track cut into four pieces, shuffled and with two
	// of them reversed.
	a := orb.LineString{{0.0, 0}, {0.1, 0}}
	b := orb.LineString{{0.1, 0}, {0.2, 0}}
	c := orb.LineString{{0.2, 0}, {0.3, 0}}
	d := orb.LineString{{0.3, 0}, {0.4, 0}}

	fragments := []orb.LineString{reversed(c), a, d, reversed(b)}
	out := Stitch(fragments, orb.Point{0, 0})

	expected := orb.LineString{
		{0.0, 0}, {0.1, 0},
		{0.1, 0}, {0.2, 0},
		{0.2, 0}, {0.3, 0},
		{0.3, 0}, {0.4, 0},
	}
	assert.Equal(t, expected, out)
}

func TestStitchPrependsWhenSeedIsInTheMiddle(t *testing.T) {
	a := orb.LineString{{0.0, 0}, {0.1, 0}}
	b := orb.LineString{{0.1, 0}, {0.2, 0}}
	c := orb.LineString{{0.2, 0}, {0.3, 0}}

	out := Stitch([]orb.LineString{a, b, c}, orb.Point{0.15, 0.001})
	require.Len(t, out, 6)
	assert.Equal(t, orb.Point{0.0, 0}, out[0])
	assert.Equal(t, orb.Point{0.3, 0}, out[5])
}

func TestStitchKeepsEveryPoint(t *testing.T) {
	fragments := []orb.LineString{
		{{1, 1}, {1.1, 1}, {1.2, 1}},
		{{0, 0}, {0.5, 0.5}},
		{{3, 3}, {3.1, 3.1}, {3.2, 3.2}, {3.3, 3.3}},
	}
	out := Stitch(fragments, orb.Point{0, 0})
	assert.Len(t, out, 9)
}

func TestStitchDoesNotMutateInput(t *testing.T) {
	a := orb.LineString{{0.0, 0}, {0.1, 0}}
	b := orb.LineString{{0.2, 0}, {0.1, 0}}
	before := append(orb.LineString(nil), b...)

	Stitch([]orb.LineString{a, b}, orb.Point{0, 0})
	assert.Equal(t, before, b)
}
