package ports

import (
	"context"
	"fuel-route-service/internal/domain"
)

// Port: a boundary for finding fuel stations near a position.
type StationLookup interface {
	// Return at most limit stations within radiusMiles of (lat, lon), cheapest first.
	// An empty result is not an error.
	NearbyStations(ctx context.Context, lat, lon, radiusMiles float64, limit int) ([]domain.FuelStation, error)
}

// Station store used by the loader tooling and the API.
type StationRepository interface {
	StationLookup
	SaveStations(ctx context.Context, stations []domain.FuelStation) error
	ListStations(ctx context.Context) ([]domain.FuelStation, error)
}
