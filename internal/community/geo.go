package community

import (
	"math"

	"climateguard/models"
)

const (
	EarthRadiusMiles = 3959.0
	KmPerMile        = 1.609344
)

// Haversine returns the great-circle distance between a and b in miles.
func Haversine(a, b models.Coordinates) float64 {
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Latitude))*math.Cos(radians(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusMiles * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func round1(x float64) float64 { return math.Round(x*10) / 10 }
