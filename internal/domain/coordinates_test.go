package domain

import (
	"math"
	"testing"
)

func TestDistanceMilesKnownValues(t *testing.T) {
	tests := []struct {
		name string
		a, b Coordinates
		want float64
	}{
		{
			name: "same point",
			a:    Coordinates{Lat: 30.2672, Lon: -97.7431},
			b:    Coordinates{Lat: 30.2672, Lon: -97.7431},
			want: 0,
		},
		{
			name: "one degree along the equator",
			a:    Coordinates{Lat: 0, Lon: 0},
			b:    Coordinates{Lat: 0, Lon: 1},
			want: EarthRadiusMiles * math.Pi / 180,
		},
		{
			name: "congress ave to e 7th st",
			a:    Coordinates{Lat: 30.2672, Lon: -97.7431},
			b:    Coordinates{Lat: 30.2687, Lon: -97.7384},
			want: 0.299,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMiles(tt.a, tt.b)
			if math.Abs(got-tt.want) > 0.01 {
				t.Fatalf("DistanceMiles = %.4f, want %.4f", got, tt.want)
			}
		})
	}
}

func TestDistanceMilesSymmetric(t *testing.T) {
	points := []Coordinates{
		{Lat: 30.2672, Lon: -97.7431},
		{Lat: 30.2198, Lon: -97.7631},
		{Lat: -33.8688, Lon: 151.2093},
		{Lat: 51.5074, Lon: -0.1278},
	}

	for i := range points {
		for j := range points {
			ab := DistanceMiles(points[i], points[j])
			ba := points[j].DistanceMiles(points[i])
			if math.Abs(ab-ba) > 1e-9 {
				t.Fatalf("asymmetric distance %d<->%d: %v vs %v", i, j, ab, ba)
			}
			if ab < 0 {
				t.Fatalf("negative distance %d->%d: %v", i, j, ab)
			}
		}
	}
}

func TestDistanceMilesOutOfRangeDoesNotFail(t *testing.T) {
	got := DistanceMiles(Coordinates{Lat: 200, Lon: 400}, Coordinates{Lat: -95, Lon: -190})
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("expected a finite distance for out-of-range input, got %v", got)
	}
}

func TestPartitionByLocationKeepsOrder(t *testing.T) {
	loc := &Coordinates{Lat: 1, Lon: 1}
	stops := []Stop{
		{ID: 1, Location: loc},
		{ID: 2},
		{ID: 3, Location: loc},
		{ID: 4},
	}

	with, without := PartitionByLocation(stops)

	if len(with) != 2 || with[0].ID != 1 || with[1].ID != 3 {
		t.Fatalf("withCoords = %+v, want ids [1 3]", with)
	}
	if len(without) != 2 || without[0].ID != 2 || without[1].ID != 4 {
		t.Fatalf("withoutCoords = %+v, want ids [2 4]", without)
	}
}

func TestStopAddress(t *testing.T) {
	s := Stop{Street: "100 Congress Ave", City: "Austin", State: "TX", Zip: "78701"}
	if got, want := s.Address(), "100 Congress Ave, Austin, TX 78701"; got != want {
		t.Fatalf("Address() = %q, want %q", got, want)
	}
}
