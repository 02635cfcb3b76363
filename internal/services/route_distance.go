package services

import (
	"fmt"
	"math"
	"trashperson-route-service/internal/domain"
)

// TotalDistance sums the haversine distance between consecutive stops, in miles.
// Zero or one stop has distance 0 whether or not it is geocoded. The result is not rounded.
func TotalDistance(stops []domain.Stop) (float64, error) {
	total := 0.0
	if len(stops) <= 1 {
		return total, nil
	}
	for i := 0; i < len(stops); i++ {
		if !stops[i].HasLocation() {
			return 0, fmt.Errorf("total distance: stop_id=%d: %w", stops[i].ID, domain.ErrMissingLocation)
		}
		if i == 0 {
			continue
		}
		total += stops[i-1].Location.DistanceMiles(*stops[i].Location)
	}
	return total, nil
}

// GeocodedDistance is TotalDistance over only the stops that have coordinates,
// in their current order.
func GeocodedDistance(stops []domain.Stop) float64 {
	withCoords, _ := domain.PartitionByLocation(stops)
	// Cannot fail: every stop in withCoords has a location.
	total, _ := TotalDistance(withCoords)
	return total
}

// RoundDistance rounds miles to one decimal place for presentation.
func RoundDistance(miles float64) float64 {
	return math.Round(miles*10) / 10
}
