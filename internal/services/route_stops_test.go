package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"trashperson-route-service/internal/adapters/locks"
	"trashperson-route-service/internal/domain"
)

func threeStopRoute() *fakeRepo {
	repo := newFakeRepo()
	repo.addRoute(1,
		domain.Stop{ID: 10, Location: loc(0, 0)},
		domain.Stop{ID: 11, Location: loc(0, 1)},
		domain.Stop{ID: 12},
	)
	return repo
}

func TestReorderStopsAppliesOrder(t *testing.T) {
	repo := threeStopRoute()

	order := []domain.StopPosition{
		{StopID: 12, Position: 1},
		{StopID: 10, Position: 2},
		{StopID: 11, Position: 3},
	}
	if err := ReorderStops(context.Background(), 1, order, repo, locks.NewMemoryLocker()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stops, _ := repo.LoadRouteStops(context.Background(), 1)
	if !equalIDs(stopIDs(stops), []int64{12, 10, 11}) {
		t.Fatalf("order = %v, want [12 10 11]", stopIDs(stops))
	}
}

func TestReorderStopsRejectsInvalidOrders(t *testing.T) {
	tests := []struct {
		name  string
		order []domain.StopPosition
	}{
		{
			name:  "partial",
			order: []domain.StopPosition{{StopID: 10, Position: 1}, {StopID: 11, Position: 2}},
		},
		{
			name: "unknown stop",
			order: []domain.StopPosition{
				{StopID: 10, Position: 1}, {StopID: 11, Position: 2}, {StopID: 99, Position: 3},
			},
		},
		{
			name: "duplicate stop",
			order: []domain.StopPosition{
				{StopID: 10, Position: 1}, {StopID: 10, Position: 2}, {StopID: 11, Position: 3},
			},
		},
		{
			name: "duplicate position",
			order: []domain.StopPosition{
				{StopID: 10, Position: 1}, {StopID: 11, Position: 1}, {StopID: 12, Position: 3},
			},
		},
		{
			name: "out of range",
			order: []domain.StopPosition{
				{StopID: 10, Position: 1}, {StopID: 11, Position: 2}, {StopID: 12, Position: 4},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := threeStopRoute()

			err := ReorderStops(context.Background(), 1, tt.order, repo, locks.NewMemoryLocker())

			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if repo.writeCount() != 0 {
				t.Fatalf("expected no writes, got %d", repo.writeCount())
			}
		})
	}
}

func TestAddStopsAppendsAfterLastPosition(t *testing.T) {
	repo := threeStopRoute()

	added, err := AddStops(context.Background(), 1, []int64{5, 6}, repo, locks.NewMemoryLocker())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(added) != 2 || added[0].Position != 4 || added[1].Position != 5 {
		t.Fatalf("added = %+v, want positions 4 and 5", added)
	}

	_, err = AddStops(context.Background(), 1, nil, repo, locks.NewMemoryLocker())
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestGetRouteDetailDerivesDistance(t *testing.T) {
	repo := threeStopRoute()

	detail, err := GetRouteDetail(context.Background(), 1, repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := 3959 * math.Pi / 180
	if math.Abs(detail.TotalDistance-want) > 1e-6 {
		t.Fatalf("distance = %f, want %f", detail.TotalDistance, want)
	}
	if len(detail.Route.Stops) != 3 {
		t.Fatalf("expected 3 stops, got %d", len(detail.Route.Stops))
	}

	if _, err := GetRouteDetail(context.Background(), 42, repo); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
