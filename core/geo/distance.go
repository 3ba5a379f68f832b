// Package geo provides great-circle distance computation between
// geographic coordinates.
package geo

import (
	"math"

	"raktsetu/core/model"
)

// earthRadiusKM is the mean Earth radius used by the haversine formula.
const earthRadiusKM = 6371

// Distance returns the great-circle distance in kilometers between two
// coordinate pairs using the haversine formula. Inputs are assumed to be
// validated coordinates; identical points yield 0.
func Distance(a, b model.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lon1 := a.Lon * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	lon2 := b.Lon * math.Pi / 180

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	return earthRadiusKM * 2 * math.Asin(math.Sqrt(h))
}
