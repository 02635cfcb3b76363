package services

import (
	"context"
	"fmt"
	"strings"
	"trashperson-route-service/internal/domain"
	"trashperson-route-service/internal/ports"
)

// GeocodeSummary reports which stops gained coordinates.
type GeocodeSummary struct {
	Resolved   []int64
	Unresolved []int64
}

// GeocodeRouteStops resolves coordinates for a route's stops that have none and
// stores them on the underlying addresses. Stops whose address cannot be
// resolved are reported, not treated as failures.
func GeocodeRouteStops(
	ctx context.Context,
	routeID int64,
	repo ports.RouteRepository,
	geocoder ports.Geocoder,
) (*GeocodeSummary, error) {
	stops, err := repo.LoadRouteStops(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("geocode route %d: load stops: %w", routeID, err)
	}

	summary := &GeocodeSummary{Resolved: []int64{}, Unresolved: []int64{}}

	_, missing := domain.PartitionByLocation(stops)
	if len(missing) == 0 {
		return summary, nil
	}

	addresses := make([]string, 0, len(missing))
	for _, s := range missing {
		if a := strings.TrimSpace(s.Address()); a != "" {
			addresses = append(addresses, a)
		}
	}

	found, err := geocoder.Geocode(ctx, addresses)
	if err != nil {
		return nil, fmt.Errorf("geocode route %d: %w", routeID, err)
	}

	locations := make(map[int64]domain.Coordinates)
	for _, s := range missing {
		c, ok := found[normalizeAddress(s.Address())]
		if !ok {
			summary.Unresolved = append(summary.Unresolved, s.ID)
			continue
		}
		locations[s.AddressID] = c
		summary.Resolved = append(summary.Resolved, s.ID)
	}

	if err := repo.SetAddressLocations(ctx, locations); err != nil {
		return nil, fmt.Errorf("geocode route %d: store locations: %w", routeID, err)
	}

	return summary, nil
}

// normalizeAddress collapses whitespace so lookups match geocoder cache keys.
func normalizeAddress(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
