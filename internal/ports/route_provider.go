package ports

import (
	"context"
	"fuel-route-service/internal/domain"
)

// Contract for retrieving a driving route between two coordinates.
// Implementations return an error wrapping domain.ErrNotFound when no route exists.
type RouteProvider interface {
	GetRoute(ctx context.Context, from domain.Coordinate, to domain.Coordinate) (domain.RouteData, error)
}
