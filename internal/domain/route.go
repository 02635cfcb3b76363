package domain

import "time"

// Route lifecycle states.
const (
	RoutePlanned    = "planned"
	RouteInProgress = "in_progress"
	RouteCompleted  = "completed"
)

// Represents a named, dated collection of stops, optionally assigned to an operator.
// Total distance is never stored; it is derived from Stops on every read.
type Route struct {
	ID         int64
	Name       string
	Date       string
	AssignedTo *int64
	Status     string
	CreatedAt  time.Time
	Stops      []Stop

	// Aggregates populated by list queries only.
	StopCount      int
	CompletedCount int
}

// RouteFilter narrows route listings. Empty fields are ignored.
type RouteFilter struct {
	Date       string
	AssignedTo *int64
	Status     string
}

// ValidRouteStatus reports whether s is a known route status.
func ValidRouteStatus(s string) bool {
	switch s {
	case RoutePlanned, RouteInProgress, RouteCompleted:
		return true
	}
	return false
}

// OptimizationResult is the per-request outcome of optimizing a route.
// Distances are raw miles; rounding is a presentation concern.
type OptimizationResult struct {
	RouteID            int64
	DistanceBefore     float64
	DistanceAfter      float64
	DistanceSaved      float64
	Stops              []Stop
	StopsExcludedCount int
}
