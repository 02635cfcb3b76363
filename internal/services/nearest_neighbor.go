package services

import (
	"fmt"
	"trashperson-route-service/internal/domain"
)

// Order geocoded stops using a greedy nearest-neighbor walk.
//
// The first stop in the input is kept as the fixed start, so re-optimizing never
// moves where the route begins. Each step scans the remaining stops in input order
// and takes the closest one; on equal distances the first one scanned wins.
//
// This is a heuristic for the open-path TSP and runs in O(n²). It does not find
// the globally shortest path and can double back on adversarial layouts.
func NearestNeighborSequence(stops []domain.Stop) ([]domain.Stop, error) {
	ordered := make([]domain.Stop, 0, len(stops))
	if len(stops) <= 1 {
		return append(ordered, stops...), nil
	}

	for _, s := range stops {
		if !s.HasLocation() {
			return nil, fmt.Errorf("sequence stops: stop_id=%d: %w", s.ID, domain.ErrMissingLocation)
		}
	}

	remaining := make([]domain.Stop, len(stops)-1)
	copy(remaining, stops[1:])

	current := stops[0]
	ordered = append(ordered, current)

	for len(remaining) > 0 {
		bestIdx := 0
		bestDist := current.Location.DistanceMiles(*remaining[0].Location)

		// Strict comparison keeps the earliest candidate on ties.
		for i := 1; i < len(remaining); i++ {
			d := current.Location.DistanceMiles(*remaining[i].Location)
			if d < bestDist {
				bestDist = d
				bestIdx = i
			}
		}

		current = remaining[bestIdx]
		ordered = append(ordered, current)
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return ordered, nil
}
