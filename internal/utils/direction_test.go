package utils

import (
	"fmt"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestBearing(t *testing.T) {
	origin := orb.Point{139.0, 35.0}
	tests := []struct {
		name      string
		to        orb.Point
		expected  float64
		tolerance float64
	}{
		{name: "north", to: orb.Point{139.0, 36.0}, expected: 0, tolerance: 0.5},
		{name: "east", to: orb.Point{140.0, 35.0}, expected: 90, tolerance: 1},
		{name: "south", to: orb.Point{139.0, 34.0}, expected: 180, tolerance: 0.5},
		{name: "west", to: orb.Point{138.0, 35.0}, expected: 270, tolerance: 1},
		{name: "northeast", to: orb.Point{139.7, 35.7}, expected: 45, tolerance: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Bearing(origin, tt.to)
			assert.InDelta(t, tt.expected, b, tt.tolerance)
			assert.GreaterOrEqual(t, b, 0.0)
			assert.Less(t, b, 360.0)
		})
	}
}

func TestBearingToCompass(t *testing.T) {
	tests := []struct {
		bearing  float64
		expected string
	}{
		{0.0, "N"},
		{45.0, "NE"},
		{90.0, "E"},
		{135.0, "SE"},
		{180.0, "S"},
		{225.0, "SW"},
		{270.0, "W"},
		{315.0, "NW"},
		{359.9, "N"},
		{22.0, "N"},
		{23.0, "NE"},
		{67.0, "NE"},
		{68.0, "E"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.1f degrees", tt.bearing), func(t *testing.T) {
			assert.Equal(t, tt.expected, BearingToCompass(tt.bearing))
		})
	}
}

func TestCompassDirection(t *testing.T) {
	tokyo := orb.Point{139.767, 35.681}
	assert.Equal(t, "N", CompassDirection(tokyo, orb.Point{139.767, 36.0}))
	assert.Equal(t, "W", CompassDirection(tokyo, orb.Point{139.0, 35.681}))
	assert.Empty(t, CompassDirection(tokyo, tokyo))
}
