package ranking

import "math"

const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance in kilometers between two
// coordinate pairs.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// GeoScore applies an exponential decay on distance. Beyond the radius the
// score is a hard 0 so out-of-radius candidates never leak into results.
func GeoScore(distanceKm, radiusKm, decayKm float64) float64 {
	if radiusKm > 0 && distanceKm > radiusKm {
		return 0
	}
	if decayKm <= 0 {
		decayKm = 25 // sane default: half the score at ~17km
	}
	return math.Exp(-distanceKm / decayKm)
}
