package ports

import (
	"context"
	"fuel-route-service/internal/domain"
	"time"
)

// Short-lived cache of station lookups keyed by a quantized query.
// A miss is reported with ok=false and a nil error.
type StationCache interface {
	GetStations(ctx context.Context, key string) (stations []domain.FuelStation, ok bool, err error)
	SetStations(ctx context.Context, key string, stations []domain.FuelStation, ttl time.Duration) error
}

// Cache of route provider responses keyed by rounded endpoints.
type RouteCache interface {
	GetRoute(ctx context.Context, key string) (route domain.RouteData, ok bool, err error)
	SetRoute(ctx context.Context, key string, route domain.RouteData, ttl time.Duration) error
}
