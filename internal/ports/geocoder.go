package ports

import (
	"context"
	"fuel-route-service/internal/domain"
)

// Contract for resolving a free-text address into coordinates.
// Implementations return an error wrapping domain.ErrNotFound when nothing matches.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Coordinate, error)
}

// Persistent address -> coordinate cache used in front of a Geocoder.
// Address keys are expected to be normalized by the caller.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinate, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinate) error
}
