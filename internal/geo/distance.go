package geo

import (
	"github.com/golang/geo/s2"

	"github.com/Alias1177/FraudStream/models"
)

const earthRadiusKm = 6371.0088

// DistanceKm returns the great-circle distance between a and b
func DistanceKm(a, b models.Coordinate) float64 {
	angle := s2.LatLngFromDegrees(a.Lat, a.Lon).Distance(s2.LatLngFromDegrees(b.Lat, b.Lon))
	return angle.Radians() * earthRadiusKm
}
