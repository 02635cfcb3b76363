package ports

import (
	"context"
	"trashperson-route-service/internal/domain"
)

// Contract for resolving free-form addresses to coordinates.
type Geocoder interface {
	// Return coordinates for the addresses that could be resolved.
	// Results are keyed by the whitespace-normalized address; addresses with
	// no match are absent from the result rather than an error.
	Geocode(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
}
