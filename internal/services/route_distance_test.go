package services

import (
	"errors"
	"math"
	"testing"
	"trashperson-route-service/internal/domain"
)

func TestTotalDistance(t *testing.T) {
	tests := []struct {
		name  string
		stops []domain.Stop
		want  float64
	}{
		{name: "empty", stops: nil, want: 0},
		{name: "single", stops: []domain.Stop{{ID: 1, Location: loc(30, -97)}}, want: 0},
		{name: "single without coordinates", stops: []domain.Stop{{ID: 9}}, want: 0},
		{
			name: "two equator degrees",
			stops: []domain.Stop{
				{ID: 1, Location: loc(0, 0)},
				{ID: 2, Location: loc(0, 1)},
				{ID: 3, Location: loc(0, 2)},
			},
			want: 2 * 3959 * math.Pi / 180,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TotalDistance(tt.stops)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-6 {
				t.Fatalf("distance = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestTotalDistanceIsSumOfLegs(t *testing.T) {
	stops := []domain.Stop{
		{ID: 1, Location: loc(30.2672, -97.7431)},
		{ID: 2, Location: loc(30.2198, -97.7631)},
		{ID: 3, Location: loc(30.2687, -97.7384)},
	}

	got, err := TotalDistance(stops)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := domain.DistanceMiles(*stops[0].Location, *stops[1].Location) +
		domain.DistanceMiles(*stops[1].Location, *stops[2].Location)
	if got != want {
		t.Fatalf("distance = %f, want %f", got, want)
	}
}

func TestTotalDistanceMissingLocation(t *testing.T) {
	_, err := TotalDistance([]domain.Stop{{ID: 1, Location: loc(0, 0)}, {ID: 2}})
	if !errors.Is(err, domain.ErrMissingLocation) {
		t.Fatalf("err = %v, want ErrMissingLocation", err)
	}
}

func TestGeocodedDistanceSkipsUnlocated(t *testing.T) {
	stops := []domain.Stop{
		{ID: 1, Location: loc(0, 0)},
		{ID: 2},
		{ID: 3, Location: loc(0, 1)},
	}

	want := 3959 * math.Pi / 180
	if got := GeocodedDistance(stops); math.Abs(got-want) > 1e-6 {
		t.Fatalf("distance = %f, want %f", got, want)
	}
}

func TestRoundDistance(t *testing.T) {
	cases := map[float64]float64{
		18.2412: 18.2,
		10.56:   10.6,
		-103.64: -103.6,
		0.04:    0,
	}
	for in, want := range cases {
		if got := RoundDistance(in); got != want {
			t.Fatalf("RoundDistance(%v) = %v, want %v", in, got, want)
		}
	}
}
