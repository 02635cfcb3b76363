package geocoding

import (
	"context"
	"strings"
	"trashperson-route-service/internal/domain"
)

// MockGeocoder resolves addresses from a fixed table. Unknown addresses are
// simply absent from the result, matching the ORS behavior for no match.
type MockGeocoder struct {
	m     map[string]domain.Coordinates
	Calls [][]string
}

func NewMockGeocoder(known map[string]domain.Coordinates) *MockGeocoder {
	m := make(map[string]domain.Coordinates, len(known))
	for addr, c := range known {
		m[strings.Join(strings.Fields(addr), " ")] = c
	}
	return &MockGeocoder{m: m}
}

func (g *MockGeocoder) Geocode(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	g.Calls = append(g.Calls, addresses)

	out := make(map[string]domain.Coordinates)
	for _, a := range addresses {
		key := strings.Join(strings.Fields(a), " ")
		if c, ok := g.m[key]; ok {
			out[key] = c
		}
	}
	return out, nil
}
