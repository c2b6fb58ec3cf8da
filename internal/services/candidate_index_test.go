package services

import (
	"context"
	"errors"
	"fmt"
	"fuel-route-service/internal/adapters/stations"
	"fuel-route-service/internal/domain"
	"testing"
)

func station(id string, lat, lon, price float64) domain.FuelStation {
	return domain.FuelStation{
		ID:       id,
		Name:     "Station " + id,
		City:     "Town",
		State:    "AZ",
		Price:    price,
		Location: domain.Coordinate{Lat: lat, Lon: lon},
	}
}

func TestCandidateIndexerTagsCandidatesWithSamplePoint(t *testing.T) {
	lookup := stations.NewMockStationLookup([]domain.FuelStation{
		station("near-start-cheap", 34.01, -118.0, 3.10),
		station("near-start-pricey", 34.02, -118.0, 3.90),
		station("near-end", 35.0, -118.01, 3.50),
		station("far-away", 40.0, -100.0, 1.00),
	})

	points := []domain.SamplePoint{
		{Lat: 34.0, Lon: -118.0, DistanceFromStart: 0},
		{Lat: 34.5, Lon: -118.0, DistanceFromStart: 34.5},
		{Lat: 35.0, Lon: -118.0, DistanceFromStart: 69.1},
	}

	idx, err := NewCandidateIndexer(lookup, 2).Index(context.Background(), points, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(idx) != 3 {
		t.Fatalf("buckets = %d, want 3", len(idx))
	}
	if lookup.Calls() != 3 {
		t.Fatalf("lookups = %d, want 3", lookup.Calls())
	}

	if len(idx[0]) != 2 {
		t.Fatalf("bucket 0 has %d candidates, want 2", len(idx[0]))
	}
	if idx[0][0].ID != "near-start-cheap" || idx[0][1].ID != "near-start-pricey" {
		t.Fatalf("bucket 0 order = [%s %s], want price ascending", idx[0][0].ID, idx[0][1].ID)
	}
	for _, c := range idx[0] {
		if c.DistanceFromStart != 0 || c.SegmentIndex != 0 {
			t.Fatalf("candidate %s tagged (%v, %d), want (0, 0)", c.ID, c.DistanceFromStart, c.SegmentIndex)
		}
	}

	if len(idx[1]) != 0 {
		t.Fatalf("bucket 1 has %d candidates, want 0", len(idx[1]))
	}

	if len(idx[2]) != 1 || idx[2][0].ID != "near-end" {
		t.Fatalf("bucket 2 = %+v, want near-end", idx[2])
	}
	if idx[2][0].DistanceFromStart != 69.1 || idx[2][0].SegmentIndex != 2 {
		t.Fatalf("near-end tagged (%v, %d), want (69.1, 2)", idx[2][0].DistanceFromStart, idx[2][0].SegmentIndex)
	}
	if idx.Len() != 3 {
		t.Fatalf("total candidates = %d, want 3", idx.Len())
	}
}

func TestCandidateIndexerCapsCandidatesPerPoint(t *testing.T) {
	var many []domain.FuelStation
	for i := 0; i < 30; i++ {
		many = append(many, station(fmt.Sprintf("s%02d", i), 34.0, -118.0, 4.0-float64(i)*0.01))
	}
	lookup := stations.NewMockStationLookup(many)

	points := []domain.SamplePoint{{Lat: 34.0, Lon: -118.0}}
	idx, err := NewCandidateIndexer(lookup, 0).Index(context.Background(), points, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(idx[0]) != stationsPerPoint {
		t.Fatalf("candidates = %d, want %d", len(idx[0]), stationsPerPoint)
	}
	if idx[0][0].ID != "s29" {
		t.Fatalf("cheapest = %s, want s29", idx[0][0].ID)
	}
}

func TestCandidateIndexerPropagatesLookupFailure(t *testing.T) {
	lookup := stations.NewMockStationLookup(nil)
	boom := errors.New("connection refused")
	lookup.FailWith(boom)

	points := []domain.SamplePoint{{Lat: 34.0, Lon: -118.0}, {Lat: 35.0, Lon: -118.0}}
	idx, err := NewCandidateIndexer(lookup, 1).Index(context.Background(), points, 25)
	if err == nil {
		t.Fatalf("expected error, got index %+v", idx)
	}
	if idx != nil {
		t.Fatalf("partial index must be discarded, got %d buckets", len(idx))
	}

	var lookupErr *domain.LookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("err = %v, want *domain.LookupError", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped cause", err)
	}
}

func TestCandidateIndexerHonorsCancellation(t *testing.T) {
	lookup := stations.NewMockStationLookup([]domain.FuelStation{station("a", 34.0, -118.0, 3.0)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	points := []domain.SamplePoint{{Lat: 34.0, Lon: -118.0}}
	if _, err := NewCandidateIndexer(lookup, 1).Index(ctx, points, 25); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestCandidateIndexerRejectsBadRadius(t *testing.T) {
	lookup := stations.NewMockStationLookup(nil)
	_, err := NewCandidateIndexer(lookup, 1).Index(context.Background(), nil, 0)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
