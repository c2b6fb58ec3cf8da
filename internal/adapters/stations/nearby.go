package stations

import (
	"fuel-route-service/internal/domain"
	"math"
	"slices"
	"strings"
)

// Miles per degree of latitude on the EarthRadiusMiles sphere.
const milesPerDegree = domain.EarthRadiusMiles * math.Pi / 180

// boundingBox returns the lat/lon box that encloses a circle of radius miles
// around (lat, lon). It is only a prefilter; callers still check exact distance.
func boundingBox(lat, lon, radius float64) (minLat, maxLat, minLon, maxLon float64) {
	dLat := radius / milesPerDegree

	cos := math.Cos(lat * math.Pi / 180)
	dLon := 180.0
	if cos > 1e-6 {
		dLon = math.Min(180, radius/(milesPerDegree*cos))
	}

	return lat - dLat, lat + dLat, lon - dLon, lon + dLon
}

// filterNearby keeps stations within radius miles of (lat, lon), annotates their
// distance, orders them cheapest first (then nearest, then by id) and caps the result.
func filterNearby(candidates []domain.FuelStation, lat, lon, radius float64, limit int) []domain.FuelStation {
	origin := domain.Coordinate{Lat: lat, Lon: lon}

	out := make([]domain.FuelStation, 0, len(candidates))
	for _, s := range candidates {
		d := origin.DistanceTo(s.Location)
		if d > radius {
			continue
		}
		s.DistanceFromPoint = d
		out = append(out, s)
	}

	slices.SortStableFunc(out, func(a, b domain.FuelStation) int {
		if a.Price != b.Price {
			if a.Price < b.Price {
				return -1
			}
			return 1
		}
		if a.DistanceFromPoint != b.DistanceFromPoint {
			if a.DistanceFromPoint < b.DistanceFromPoint {
				return -1
			}
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
