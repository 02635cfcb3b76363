package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"trashperson-route-service/internal/adapters/locks"
	"trashperson-route-service/internal/domain"
)

// austinZigzag is the demo route in its deliberately inefficient seeded order.
func austinZigzag() []domain.Stop {
	return []domain.Stop{
		{ID: 1, Location: loc(30.2672, -97.7431)}, // 100 Congress Ave
		{ID: 7, Location: loc(30.2198, -97.7631)}, // 4500 S Congress Ave
		{ID: 3, Location: loc(30.2687, -97.7384)}, // 500 E 7th St
		{ID: 5, Location: loc(30.2951, -97.7385)}, // 3500 Guadalupe St
		{ID: 2, Location: loc(30.2465, -97.7729)}, // 2000 S Lamar Blvd
		{ID: 8, Location: loc(30.2702, -97.7524)}, // 800 W 6th St
		{ID: 4, Location: loc(30.2847, -97.7404)}, // 1800 N Congress Ave
		{ID: 6, Location: loc(30.2614, -97.7612)}, // 1200 Barton Springs Rd
	}
}

func assertContiguous(t *testing.T, stops []domain.Stop) {
	t.Helper()
	for i, s := range stops {
		if s.Position != i+1 {
			t.Fatalf("stop %d at index %d has position %d", s.ID, i, s.Position)
		}
	}
}

func TestOptimizeRouteAustinZigzag(t *testing.T) {
	repo := newFakeRepo()
	repo.addRoute(1, austinZigzag()...)

	res, err := OptimizeRoute(context.Background(), 1, repo, locks.NewMemoryLocker())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Stops) != 8 {
		t.Fatalf("expected 8 stops, got %d", len(res.Stops))
	}
	if res.Stops[0].ID != 1 {
		t.Fatalf("first stop = %d, want 1", res.Stops[0].ID)
	}
	assertContiguous(t, res.Stops)

	want := []int64{1, 3, 8, 6, 2, 7, 4, 5}
	if !equalIDs(stopIDs(res.Stops), want) {
		t.Fatalf("order = %v, want %v", stopIDs(res.Stops), want)
	}

	if RoundDistance(res.DistanceBefore) != 18.2 {
		t.Fatalf("before = %f, want ~18.2", res.DistanceBefore)
	}
	if RoundDistance(res.DistanceAfter) != 10.5 {
		t.Fatalf("after = %f, want ~10.5", res.DistanceAfter)
	}
	if res.DistanceSaved <= 0 {
		t.Fatalf("saved = %f, want > 0", res.DistanceSaved)
	}
	if res.StopsExcludedCount != 0 {
		t.Fatalf("excluded = %d, want 0", res.StopsExcludedCount)
	}
}

func TestOptimizeRouteAppendsStopsWithoutCoordinates(t *testing.T) {
	repo := newFakeRepo()
	repo.addRoute(1,
		domain.Stop{ID: 1, Location: loc(0, 0)},
		domain.Stop{ID: 2},
		domain.Stop{ID: 3, Location: loc(0, 2)},
		domain.Stop{ID: 4},
		domain.Stop{ID: 5, Location: loc(0, 1)},
	)

	res, err := OptimizeRoute(context.Background(), 1, repo, locks.NewMemoryLocker())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int64{1, 5, 3, 2, 4}
	if !equalIDs(stopIDs(res.Stops), want) {
		t.Fatalf("order = %v, want %v", stopIDs(res.Stops), want)
	}
	assertContiguous(t, res.Stops)

	if res.StopsExcludedCount != 2 {
		t.Fatalf("excluded = %d, want 2", res.StopsExcludedCount)
	}
}

func TestOptimizeRouteCanReportNegativeSavings(t *testing.T) {
	// The stored order is already shorter than the greedy walk.
	repo := newFakeRepo()
	repo.addRoute(1,
		domain.Stop{ID: 1, Location: loc(0, 0)},
		domain.Stop{ID: 2, Location: loc(0, -1.5)},
		domain.Stop{ID: 3, Location: loc(0, 1)},
		domain.Stop{ID: 4, Location: loc(0, 3)},
	)

	res, err := OptimizeRoute(context.Background(), 1, repo, locks.NewMemoryLocker())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int64{1, 3, 4, 2}
	if !equalIDs(stopIDs(res.Stops), want) {
		t.Fatalf("order = %v, want %v", stopIDs(res.Stops), want)
	}
	if res.DistanceSaved >= 0 {
		t.Fatalf("saved = %f, want negative", res.DistanceSaved)
	}
	if res.DistanceSaved != res.DistanceBefore-res.DistanceAfter {
		t.Fatalf("saved %f != before %f - after %f", res.DistanceSaved, res.DistanceBefore, res.DistanceAfter)
	}
}

func TestOptimizeRouteNeedsTwoGeocodedStops(t *testing.T) {
	repo := newFakeRepo()
	repo.addRoute(1,
		domain.Stop{ID: 1, Location: loc(0, 0)},
		domain.Stop{ID: 2},
		domain.Stop{ID: 3},
	)

	_, err := OptimizeRoute(context.Background(), 1, repo, locks.NewMemoryLocker())

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if ve.ExcludedCount != 2 {
		t.Fatalf("excluded = %d, want 2", ve.ExcludedCount)
	}
	if repo.writeCount() != 0 {
		t.Fatalf("expected no writes, got %d", repo.writeCount())
	}

	stops, _ := repo.LoadRouteStops(context.Background(), 1)
	if !equalIDs(stopIDs(stops), []int64{1, 2, 3}) {
		t.Fatalf("order changed: %v", stopIDs(stops))
	}
}

func TestOptimizeRouteNotFound(t *testing.T) {
	repo := newFakeRepo()
	repo.addRoute(2)

	for _, id := range []int64{1, 2} {
		_, err := OptimizeRoute(context.Background(), id, repo, locks.NewMemoryLocker())
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("route %d: err = %v, want ErrNotFound", id, err)
		}
	}
}

func TestOptimizeRoutePropagatesWriteFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.addRoute(1, austinZigzag()...)
	repo.failSetPositions = domain.ErrConflict

	_, err := OptimizeRoute(context.Background(), 1, repo, locks.NewMemoryLocker())
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestOptimizeRouteConcurrentCallsAgree(t *testing.T) {
	repo := newFakeRepo()
	repo.addRoute(1, austinZigzag()...)
	locker := locks.NewMemoryLocker()

	const workers = 8
	results := make([][]int64, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := OptimizeRoute(context.Background(), 1, repo, locker)
			errs[i] = err
			if err == nil {
				results[i] = stopIDs(res.Stops)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if !equalIDs(results[i], results[0]) {
			t.Fatalf("worker %d order %v differs from %v", i, results[i], results[0])
		}
	}

	stops, _ := repo.LoadRouteStops(context.Background(), 1)
	assertContiguous(t, stops)
}
