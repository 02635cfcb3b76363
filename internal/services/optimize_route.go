package services

import (
	"context"
	"fmt"
	"trashperson-route-service/internal/domain"
	"trashperson-route-service/internal/platform/obs"
	"trashperson-route-service/internal/ports"
)

// OptimizeRoute reorders a route's geocoded stops by nearest neighbor and persists the order.
//
// Stops without coordinates keep their relative order and are placed after the
// optimized ones. The whole load/sequence/persist sequence runs under the route
// lock and the position rewrite is a single transaction, so positions stay a
// contiguous 1..n permutation under concurrent callers.
func OptimizeRoute(
	ctx context.Context,
	routeID int64,
	repo ports.RouteRepository,
	locker ports.RouteLocker,
) (_ *domain.OptimizationResult, err error) {
	defer obs.Time(ctx, "services.OptimizeRoute")(&err)

	unlock, err := locker.Lock(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("optimize route %d: acquire lock: %w", routeID, err)
	}
	defer unlock()

	stops, err := repo.LoadRouteStops(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("optimize route %d: load stops: %w", routeID, err)
	}
	if len(stops) == 0 {
		return nil, fmt.Errorf("optimize route %d: route has no stops: %w", routeID, domain.ErrNotFound)
	}

	withCoords, withoutCoords := domain.PartitionByLocation(stops)
	if len(withCoords) < 2 {
		return nil, &domain.ValidationError{
			Reason: fmt.Sprintf(
				"need at least 2 stops with coordinates to optimize (%d stops missing coordinates)",
				len(withoutCoords),
			),
			ExcludedCount: len(withoutCoords),
		}
	}

	before, err := TotalDistance(withCoords)
	if err != nil {
		return nil, fmt.Errorf("optimize route %d: distance before: %w", routeID, err)
	}

	ordered, err := NearestNeighborSequence(withCoords)
	if err != nil {
		return nil, fmt.Errorf("optimize route %d: %w", routeID, err)
	}

	after, err := TotalDistance(ordered)
	if err != nil {
		return nil, fmt.Errorf("optimize route %d: distance after: %w", routeID, err)
	}

	positions := make([]domain.StopPosition, 0, len(stops))
	for _, s := range ordered {
		positions = append(positions, domain.StopPosition{StopID: s.ID, Position: len(positions) + 1})
	}
	for _, s := range withoutCoords {
		positions = append(positions, domain.StopPosition{StopID: s.ID, Position: len(positions) + 1})
	}

	if err := repo.SetStopPositions(ctx, routeID, positions); err != nil {
		return nil, fmt.Errorf("optimize route %d: persist positions: %w", routeID, err)
	}

	updated, err := repo.LoadRouteStops(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("optimize route %d: reload stops: %w", routeID, err)
	}

	return &domain.OptimizationResult{
		RouteID:            routeID,
		DistanceBefore:     before,
		DistanceAfter:      after,
		DistanceSaved:      before - after,
		Stops:              updated,
		StopsExcludedCount: len(withoutCoords),
	}, nil
}
