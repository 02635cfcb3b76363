package ports

import (
	"context"
	"trashperson-route-service/internal/domain"
)

// Port: the storage collaborator for routes and their stops.
type RouteRepository interface {
	// Return routes matching the filter, newest date first, with stop aggregates.
	ListRoutes(ctx context.Context, filter domain.RouteFilter) ([]*domain.Route, error)
	// Return a route with its stops ordered by position. domain.ErrNotFound if missing.
	GetRoute(ctx context.Context, routeID int64) (*domain.Route, error)
	// Insert a route and one pending stop per appointment at positions 1..n.
	CreateRoute(ctx context.Context, route *domain.Route, appointmentIDs []int64) (*domain.Route, error)
	// Append stops after the route's current max position.
	AddStops(ctx context.Context, routeID int64, appointmentIDs []int64) ([]domain.Stop, error)
	// Return the route's stops ordered by position. domain.ErrNotFound if the route is missing.
	LoadRouteStops(ctx context.Context, routeID int64) ([]domain.Stop, error)
	// Rewrite stop positions in a single transaction; all or nothing.
	SetStopPositions(ctx context.Context, routeID int64, positions []domain.StopPosition) error
	// Apply a status and/or notes change to one stop.
	UpdateStop(ctx context.Context, routeID, stopID int64, update domain.StopUpdate) error
	UpdateRouteStatus(ctx context.Context, routeID int64, status string) error
	DeleteRoute(ctx context.Context, routeID int64) error
	// Persist geocoded coordinates keyed by address id.
	SetAddressLocations(ctx context.Context, locations map[int64]domain.Coordinates) error
}
