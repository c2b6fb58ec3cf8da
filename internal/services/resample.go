package services

import (
	"fmt"
	"fuel-route-service/internal/domain"
	"math"
)

// Default spacing (miles) between sample points along a route.
const DefaultSampleInterval = 100.0

// ResampleRoute converts a polyline into evenly spaced sample points.
//
// The first vertex is always emitted at distance 0 and the last vertex at the
// route's true cumulative length, whatever the interval alignment. Interior
// points are placed every interval miles by linear lat/lon interpolation
// within the segment that crosses the mark; one long segment may produce
// several points. A zero-length segment (repeated vertex) is rejected as
// invalid input; route providers collapse repeats before handing geometry over.
// The function is pure and deterministic.
func ResampleRoute(coordinates []domain.Coordinate, interval float64) ([]domain.SamplePoint, error) {
	if len(coordinates) < 2 {
		return nil, fmt.Errorf("resample route: need at least 2 coordinates, got %d: %w", len(coordinates), domain.ErrInvalidInput)
	}
	if math.IsNaN(interval) || math.IsInf(interval, 0) || interval <= 0 {
		return nil, fmt.Errorf("resample route: interval must be positive, got %v: %w", interval, domain.ErrInvalidInput)
	}
	for i, c := range coordinates {
		if !c.Valid() {
			return nil, fmt.Errorf("resample route: coordinate %d (%v) is out of range: %w", i, c, domain.ErrInvalidInput)
		}
	}

	first := coordinates[0]
	points := []domain.SamplePoint{{Lat: first.Lat, Lon: first.Lon, DistanceFromStart: 0}}

	cumulative := 0.0
	lastSample := 0.0

	for i := 1; i < len(coordinates); i++ {
		prev := coordinates[i-1]
		curr := coordinates[i]

		segment := prev.DistanceTo(curr)
		if segment == 0 {
			return nil, fmt.Errorf("resample route: segment %d has zero length: %w", i, domain.ErrInvalidInput)
		}

		segmentStart := cumulative
		cumulative += segment

		for cumulative-lastSample >= interval {
			lastSample += interval
			ratio := (lastSample - segmentStart) / segment
			points = append(points, domain.SamplePoint{
				Lat:               prev.Lat + ratio*(curr.Lat-prev.Lat),
				Lon:               prev.Lon + ratio*(curr.Lon-prev.Lon),
				DistanceFromStart: lastSample,
			})
		}
	}

	last := coordinates[len(coordinates)-1]
	points = append(points, domain.SamplePoint{Lat: last.Lat, Lon: last.Lon, DistanceFromStart: cumulative})

	return points, nil
}

// polylineLength returns the cumulative great-circle length of coordinates in miles.
func polylineLength(coordinates []domain.Coordinate) float64 {
	total := 0.0
	for i := 1; i < len(coordinates); i++ {
		total += coordinates[i-1].DistanceTo(coordinates[i])
	}
	return total
}
