package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a route or stop does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a route's stop set changed underneath a write.
var ErrConflict = errors.New("route stops changed concurrently")

// ErrMissingLocation is returned when a stop without coordinates reaches distance math.
var ErrMissingLocation = errors.New("stop has no coordinates")

// ValidationError reports a request that cannot be satisfied with the route's data.
// ExcludedCount is the number of stops skipped for lacking coordinates.
type ValidationError struct {
	Reason        string
	ExcludedCount int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}
