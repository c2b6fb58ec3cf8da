package geocode

import (
	"context"
	"fmt"
	"fuel-route-service/internal/domain"
	"sync"
)

// MockGeocoder answers from a fixed address table. Unknown addresses are ErrNotFound.
type MockGeocoder struct {
	m map[string]domain.Coordinate

	mu    sync.Mutex
	calls int
	err   error
}

func NewMockGeocoder(known map[string]domain.Coordinate) *MockGeocoder {
	m := make(map[string]domain.Coordinate, len(known))
	for addr, c := range known {
		m[normalize(addr)] = c
	}
	return &MockGeocoder{m: m}
}

// FailWith makes every subsequent call return err.
func (g *MockGeocoder) FailWith(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

func (g *MockGeocoder) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *MockGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinate, error) {
	g.mu.Lock()
	g.calls++
	err := g.err
	g.mu.Unlock()

	if err != nil {
		return domain.Coordinate{}, err
	}

	c, ok := g.m[normalize(address)]
	if !ok {
		return domain.Coordinate{}, fmt.Errorf("mock geocode %q: %w", address, domain.ErrNotFound)
	}
	return c, nil
}
