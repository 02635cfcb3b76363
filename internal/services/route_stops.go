package services

import (
	"context"
	"fmt"
	"trashperson-route-service/internal/domain"
	"trashperson-route-service/internal/ports"
)

// ReorderStops applies a manual stop order.
//
// The order must name every stop of the route exactly once with positions 1..n.
// Partial orders are rejected so the contiguity invariant cannot be broken by hand.
func ReorderStops(
	ctx context.Context,
	routeID int64,
	order []domain.StopPosition,
	repo ports.RouteRepository,
	locker ports.RouteLocker,
) error {
	unlock, err := locker.Lock(ctx, routeID)
	if err != nil {
		return fmt.Errorf("reorder stops route %d: acquire lock: %w", routeID, err)
	}
	defer unlock()

	stops, err := repo.LoadRouteStops(ctx, routeID)
	if err != nil {
		return fmt.Errorf("reorder stops route %d: load stops: %w", routeID, err)
	}

	if err := validateStopOrder(stops, order); err != nil {
		return err
	}

	if err := repo.SetStopPositions(ctx, routeID, order); err != nil {
		return fmt.Errorf("reorder stops route %d: persist positions: %w", routeID, err)
	}

	return nil
}

func validateStopOrder(stops []domain.Stop, order []domain.StopPosition) error {
	if len(order) != len(stops) {
		return &domain.ValidationError{
			Reason: fmt.Sprintf("stop_order must list all %d stops, got %d", len(stops), len(order)),
		}
	}

	known := make(map[int64]struct{}, len(stops))
	for _, s := range stops {
		known[s.ID] = struct{}{}
	}

	seenStops := make(map[int64]struct{}, len(order))
	seenPositions := make(map[int]struct{}, len(order))
	for _, o := range order {
		if _, ok := known[o.StopID]; !ok {
			return &domain.ValidationError{Reason: fmt.Sprintf("stop %d does not belong to this route", o.StopID)}
		}
		if _, ok := seenStops[o.StopID]; ok {
			return &domain.ValidationError{Reason: fmt.Sprintf("stop %d listed more than once", o.StopID)}
		}
		if o.Position < 1 || o.Position > len(stops) {
			return &domain.ValidationError{Reason: fmt.Sprintf("order %d out of range 1..%d", o.Position, len(stops))}
		}
		if _, ok := seenPositions[o.Position]; ok {
			return &domain.ValidationError{Reason: fmt.Sprintf("order %d used more than once", o.Position)}
		}
		seenStops[o.StopID] = struct{}{}
		seenPositions[o.Position] = struct{}{}
	}

	return nil
}

// AddStops appends one stop per appointment after the route's last position.
func AddStops(
	ctx context.Context,
	routeID int64,
	appointmentIDs []int64,
	repo ports.RouteRepository,
	locker ports.RouteLocker,
) ([]domain.Stop, error) {
	if len(appointmentIDs) == 0 {
		return nil, &domain.ValidationError{Reason: "appointment_ids are required"}
	}

	unlock, err := locker.Lock(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("add stops route %d: acquire lock: %w", routeID, err)
	}
	defer unlock()

	added, err := repo.AddStops(ctx, routeID, appointmentIDs)
	if err != nil {
		return nil, fmt.Errorf("add stops route %d: %w", routeID, err)
	}
	return added, nil
}

// RouteDetail is a route with its derived total distance in miles.
type RouteDetail struct {
	Route         *domain.Route
	TotalDistance float64
}

// GetRouteDetail loads a route and recomputes its total distance from the
// current stop order. Stops without coordinates are skipped.
func GetRouteDetail(ctx context.Context, routeID int64, repo ports.RouteRepository) (*RouteDetail, error) {
	route, err := repo.GetRoute(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("get route %d: %w", routeID, err)
	}

	return &RouteDetail{
		Route:         route,
		TotalDistance: GeocodedDistance(route.Stops),
	}, nil
}
