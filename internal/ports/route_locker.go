package ports

import "context"

// RouteLocker serializes read-modify-write sequences on one route's stop collection.
type RouteLocker interface {
	// Lock blocks until the route is held or ctx ends. The returned func releases it.
	Lock(ctx context.Context, routeID int64) (unlock func(), err error)
}
