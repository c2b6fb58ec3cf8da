package services

import (
	"errors"
	"fuel-route-service/internal/domain"
	"math"
	"testing"
)

func TestResampleRouteBoundaries(t *testing.T) {
	coords := []domain.Coordinate{
		{Lat: 34.05, Lon: -118.25},
		{Lat: 34.10, Lon: -118.20},
		{Lat: 34.15, Lon: -118.15},
	}

	points, err := ResampleRoute(coords, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(points) < 2 {
		t.Fatalf("expected at least 2 points, got %d", len(points))
	}

	first := points[0]
	if first.DistanceFromStart != 0 || first.Lat != 34.05 || first.Lon != -118.25 {
		t.Fatalf("first point = %+v, want start at distance 0", first)
	}

	last := points[len(points)-1]
	want := polylineLength(coords)
	if math.Abs(last.DistanceFromStart-want) > 1e-9 {
		t.Fatalf("last distance = %v, want %v", last.DistanceFromStart, want)
	}
	if last.Lat != 34.15 || last.Lon != -118.15 {
		t.Fatalf("last point = %+v, want final vertex", last)
	}
}

func TestResampleRouteMonotonicAndComplete(t *testing.T) {
	routes := map[string][]domain.Coordinate{
		"single long segment": {
			{Lat: 34.0, Lon: -118.0},
			{Lat: 35.0, Lon: -118.0},
		},
		"zig zag": {
			{Lat: 34.0, Lon: -118.0},
			{Lat: 34.3, Lon: -117.2},
			{Lat: 34.1, Lon: -116.5},
			{Lat: 34.9, Lon: -115.9},
			{Lat: 35.2, Lon: -114.1},
		},
		"uneven segments": {
			{Lat: 40.0, Lon: -100.0},
			{Lat: 40.01, Lon: -100.0},
			{Lat: 40.5, Lon: -99.0},
			{Lat: 41.0, Lon: -98.3},
		},
	}

	for name, coords := range routes {
		for _, interval := range []float64{7, 20, 33.3} {
			points, err := ResampleRoute(coords, interval)
			if err != nil {
				t.Fatalf("%s/%v: unexpected error: %v", name, interval, err)
			}

			for i := 1; i < len(points); i++ {
				if points[i].DistanceFromStart < points[i-1].DistanceFromStart {
					t.Fatalf("%s/%v: distance decreases at %d: %v < %v",
						name, interval, i, points[i].DistanceFromStart, points[i-1].DistanceFromStart)
				}
			}

			length := polylineLength(coords)
			wantInterior := int(math.Floor(length / interval))
			if got := len(points) - 2; got != wantInterior {
				t.Fatalf("%s/%v: interior points = %d, want %d (length %v)", name, interval, got, wantInterior, length)
			}
		}
	}
}

func TestResampleRouteInterpolatesLinearly(t *testing.T) {
	// A meridian segment: interpolated longitude stays fixed, latitude moves proportionally.
	coords := []domain.Coordinate{
		{Lat: 34.0, Lon: -118.0},
		{Lat: 35.0, Lon: -118.0},
	}
	length := polylineLength(coords)

	points, err := ResampleRoute(coords, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := points[1]
	if p.DistanceFromStart != 20 {
		t.Fatalf("first interior distance = %v, want 20", p.DistanceFromStart)
	}
	wantLat := 34.0 + 20/length
	if math.Abs(p.Lat-wantLat) > 1e-9 || p.Lon != -118.0 {
		t.Fatalf("first interior point = (%v, %v), want (%v, -118)", p.Lat, p.Lon, wantLat)
	}
}

func TestResampleRouteRejectsBadInput(t *testing.T) {
	two := []domain.Coordinate{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}}

	cases := map[string]struct {
		coords   []domain.Coordinate
		interval float64
	}{
		"one point":        {coords: two[:1], interval: 10},
		"zero interval":    {coords: two, interval: 0},
		"negative":         {coords: two, interval: -5},
		"nan interval":     {coords: two, interval: math.NaN()},
		"zero length":      {coords: []domain.Coordinate{{Lat: 1, Lon: 1}, {Lat: 1, Lon: 1}}, interval: 10},
		"repeated vertex":  {coords: []domain.Coordinate{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}, {Lat: 2, Lon: 2}, {Lat: 3, Lon: 3}}, interval: 10},
		"out of range lat": {coords: []domain.Coordinate{{Lat: 95, Lon: 1}, {Lat: 2, Lon: 2}}, interval: 10},
	}

	for name, tc := range cases {
		_, err := ResampleRoute(tc.coords, tc.interval)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("%s: err = %v, want ErrInvalidInput", name, err)
		}
	}
}

func TestResampleRouteIsDeterministic(t *testing.T) {
	coords := []domain.Coordinate{
		{Lat: 34.0, Lon: -118.0},
		{Lat: 36.1, Lon: -115.1},
		{Lat: 39.7, Lon: -104.9},
	}

	a, err := ResampleRoute(coords, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := ResampleRoute(coords, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
