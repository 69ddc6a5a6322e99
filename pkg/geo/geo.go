// Package geo provides great-circle distance math over latitude/longitude
// pairs. Distances are in miles throughout the system.
package geo

import (
	"math"

	"localsphere-backend/internal/domain"
)

// earthRadiusMiles is the mean Earth radius used by the haversine formula.
const earthRadiusMiles = 3959.0

// Distance returns the great-circle distance in miles between two
// positions. It is symmetric and zero for identical positions. Callers
// must validate coordinates first; this function does no checking.
func Distance(a, b domain.Position) float64 {
	dLat := deg2rad(b.Latitude - a.Latitude)
	dLng := deg2rad(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(a.Latitude))*math.Cos(deg2rad(b.Latitude))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMiles * c
}

// InBroadcastRange reports whether a receiver at pos with radius
// receiverRadius is eligible for an event originated at origin with
// radius originRadius. The boundary is inclusive: equality delivers.
func InBroadcastRange(origin domain.Position, originRadius float64, pos domain.Position, receiverRadius float64) bool {
	return Distance(origin, pos) <= math.Max(originRadius, receiverRadius)
}

func deg2rad(deg float64) float64 {
	return deg * (math.Pi / 180)
}
