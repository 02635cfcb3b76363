package services

import (
	"context"
	"sort"
	"sync"
	"trashperson-route-service/internal/domain"
)

// fakeRepo is an in-memory RouteRepository holding the stops of any number of routes.
type fakeRepo struct {
	mu     sync.Mutex
	stops  map[int64][]domain.Stop
	writes int

	failSetPositions error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{stops: make(map[int64][]domain.Stop)}
}

func loc(lat, lon float64) *domain.Coordinates {
	return &domain.Coordinates{Lat: lat, Lon: lon}
}

// addRoute stores stops at positions 1..n in the given order.
func (f *fakeRepo) addRoute(routeID int64, stops ...domain.Stop) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range stops {
		stops[i].RouteID = routeID
		stops[i].Position = i + 1
		if stops[i].AddressID == 0 {
			stops[i].AddressID = stops[i].ID
		}
	}
	f.stops[routeID] = stops
}

func (f *fakeRepo) ListRoutes(ctx context.Context, filter domain.RouteFilter) ([]*domain.Route, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*domain.Route, 0, len(f.stops))
	for id, stops := range f.stops {
		out = append(out, &domain.Route{ID: id, StopCount: len(stops)})
	}
	return out, nil
}

func (f *fakeRepo) GetRoute(ctx context.Context, routeID int64) (*domain.Route, error) {
	stops, err := f.LoadRouteStops(ctx, routeID)
	if err != nil {
		return nil, err
	}
	return &domain.Route{ID: routeID, Status: domain.RoutePlanned, Stops: stops}, nil
}

func (f *fakeRepo) CreateRoute(ctx context.Context, route *domain.Route, appointmentIDs []int64) (*domain.Route, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	route.ID = int64(len(f.stops) + 1)
	f.stops[route.ID] = nil
	return route, nil
}

func (f *fakeRepo) AddStops(ctx context.Context, routeID int64, appointmentIDs []int64) ([]domain.Stop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stops, ok := f.stops[routeID]
	if !ok {
		return nil, domain.ErrNotFound
	}

	added := make([]domain.Stop, 0, len(appointmentIDs))
	for _, appt := range appointmentIDs {
		s := domain.Stop{
			ID:            appt * 100,
			RouteID:       routeID,
			AppointmentID: appt,
			Position:      len(stops) + 1,
			Status:        domain.StopPending,
		}
		stops = append(stops, s)
		added = append(added, s)
	}
	f.stops[routeID] = stops
	f.writes++
	return added, nil
}

func (f *fakeRepo) LoadRouteStops(ctx context.Context, routeID int64) ([]domain.Stop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stops, ok := f.stops[routeID]
	if !ok {
		return nil, domain.ErrNotFound
	}

	out := make([]domain.Stop, len(stops))
	copy(out, stops)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeRepo) SetStopPositions(ctx context.Context, routeID int64, positions []domain.StopPosition) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failSetPositions != nil {
		return f.failSetPositions
	}

	stops, ok := f.stops[routeID]
	if !ok {
		return domain.ErrNotFound
	}
	if len(positions) != len(stops) {
		return domain.ErrConflict
	}

	idx := make(map[int64]int, len(stops))
	for i, s := range stops {
		idx[s.ID] = i
	}
	next := make([]domain.Stop, len(stops))
	copy(next, stops)
	for _, p := range positions {
		i, ok := idx[p.StopID]
		if !ok {
			return domain.ErrConflict
		}
		next[i].Position = p.Position
	}

	f.stops[routeID] = next
	f.writes++
	return nil
}

func (f *fakeRepo) UpdateStop(ctx context.Context, routeID, stopID int64, update domain.StopUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, s := range f.stops[routeID] {
		if s.ID == stopID {
			if update.Status != nil {
				f.stops[routeID][i].Status = *update.Status
			}
			if update.HasNotes() {
				f.stops[routeID][i].Notes = update.Notes
			}
			f.writes++
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeRepo) UpdateRouteStatus(ctx context.Context, routeID int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.stops[routeID]; !ok {
		return domain.ErrNotFound
	}
	f.writes++
	return nil
}

func (f *fakeRepo) DeleteRoute(ctx context.Context, routeID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.stops[routeID]; !ok {
		return domain.ErrNotFound
	}
	delete(f.stops, routeID)
	f.writes++
	return nil
}

func (f *fakeRepo) SetAddressLocations(ctx context.Context, locations map[int64]domain.Coordinates) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for routeID, stops := range f.stops {
		for i, s := range stops {
			if c, ok := locations[s.AddressID]; ok {
				c := c
				f.stops[routeID][i].Location = &c
			}
		}
	}
	f.writes++
	return nil
}

func (f *fakeRepo) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}
