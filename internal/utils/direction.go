package utils

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

var compassPoints = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// Bearing returns the initial great-circle bearing from one point to another,
// in degrees clockwise from north within [0, 360).
func Bearing(from, to orb.Point) float64 {
	return math.Mod(geo.Bearing(from, to)+360, 360)
}

// BearingToCompass converts a bearing to an 8-point compass direction.
func BearingToCompass(bearing float64) string {
	index := int(math.Mod(bearing+22.5, 360) / 45.0)
	return compassPoints[index%8]
}

// CompassDirection returns the compass direction of travel from one point to
// another. Coincident points give an empty string.
func CompassDirection(from, to orb.Point) string {
	if from.Equal(to) {
		return ""
	}
	return BearingToCompass(Bearing(from, to))
}
