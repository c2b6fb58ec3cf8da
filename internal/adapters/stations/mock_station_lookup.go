package stations

import (
	"context"
	"fuel-route-service/internal/domain"
	"sync"
)

// MockStationLookup serves NearbyStations from an in-memory station list.
type MockStationLookup struct {
	stations []domain.FuelStation

	mu    sync.Mutex
	calls int
	err   error
}

func NewMockStationLookup(stations []domain.FuelStation) *MockStationLookup {
	return &MockStationLookup{stations: stations}
}

// FailWith makes every subsequent lookup return err.
func (m *MockStationLookup) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockStationLookup) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockStationLookup) NearbyStations(
	ctx context.Context,
	lat, lon, radiusMiles float64,
	limit int,
) ([]domain.FuelStation, error) {
	m.mu.Lock()
	m.calls++
	err := m.err
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return filterNearby(m.stations, lat, lon, radiusMiles, limit), nil
}
