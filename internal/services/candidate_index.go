package services

import (
	"context"
	"errors"
	"fmt"
	"fuel-route-service/internal/domain"
	"fuel-route-service/internal/platform/obs"
	"fuel-route-service/internal/ports"
	"math"

	"golang.org/x/sync/errgroup"
)

const (
	// Maximum stations considered per sample point.
	stationsPerPoint = 20

	defaultLookupConcurrency = 8
)

// CandidateIndexer builds the segment-indexed candidate table the optimizer consumes.
//
// Each sample point gets one station lookup. Lookups are independent and run
// concurrently (bounded by Concurrency); each goroutine writes only its own
// bucket, so completion order does not matter.
type CandidateIndexer struct {
	Lookup      ports.StationLookup
	Concurrency int
}

func NewCandidateIndexer(lookup ports.StationLookup, concurrency int) *CandidateIndexer {
	return &CandidateIndexer{Lookup: lookup, Concurrency: concurrency}
}

// Index probes every sample point within radius miles and tags each returned
// station with the probing point's distance and index.
//
// A lookup that returns no stations leaves an empty bucket. A lookup that fails
// cancels the remaining lookups and the partial index is discarded.
func (ci *CandidateIndexer) Index(
	ctx context.Context,
	points []domain.SamplePoint,
	radius float64,
) (_ domain.CandidateIndex, err error) {
	defer obs.Time(ctx, "candidates.Index")(&err)

	if ci.Lookup == nil {
		return nil, errors.New("index candidates: station lookup is nil")
	}
	if math.IsNaN(radius) || math.IsInf(radius, 0) || radius <= 0 {
		return nil, fmt.Errorf("index candidates: radius must be positive, got %v: %w", radius, domain.ErrInvalidInput)
	}

	index := make(domain.CandidateIndex, len(points))
	if len(points) == 0 {
		return index, nil
	}

	limit := ci.Concurrency
	if limit <= 0 {
		limit = defaultLookupConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, p := range points {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			stations, err := ci.Lookup.NearbyStations(gctx, p.Lat, p.Lon, radius, stationsPerPoint)
			if err != nil {
				return &domain.LookupError{Index: i, Point: p, Err: err}
			}

			index[i] = toCandidates(stations, p, i)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("index candidates: %w", err)
	}

	return index, nil
}

// toCandidates places stations on the route timeline at the sample point's distance.
// The input slice is copied so cached lookup results are never mutated.
func toCandidates(stations []domain.FuelStation, p domain.SamplePoint, segment int) []domain.FuelStopCandidate {
	if len(stations) > stationsPerPoint {
		stations = stations[:stationsPerPoint]
	}

	out := make([]domain.FuelStopCandidate, 0, len(stations))
	for _, s := range stations {
		out = append(out, domain.FuelStopCandidate{
			FuelStation:       s,
			DistanceFromStart: p.DistanceFromStart,
			SegmentIndex:      segment,
		})
	}
	return out
}
