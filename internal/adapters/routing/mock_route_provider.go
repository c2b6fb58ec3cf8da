package routing

import (
	"context"
	"fmt"
	"fuel-route-service/internal/domain"
	"sync"
)

type MockRoute struct {
	From, To domain.Coordinate
	Route    domain.RouteData
}

// MockRouteProvider returns canned routes keyed by endpoints. Unknown pairs are ErrNotFound.
type MockRouteProvider struct {
	m map[string]domain.RouteData

	mu    sync.Mutex
	calls int
}

func NewMockRouteProvider(routes []MockRoute) *MockRouteProvider {
	m := make(map[string]domain.RouteData, len(routes))
	for _, r := range routes {
		m[routeCacheKey(r.From, r.To)] = r.Route
	}
	return &MockRouteProvider{m: m}
}

func (p *MockRouteProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *MockRouteProvider) GetRoute(ctx context.Context, from, to domain.Coordinate) (domain.RouteData, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.RouteData{}, err
	}

	r, ok := p.m[routeCacheKey(from, to)]
	if !ok {
		return domain.RouteData{}, fmt.Errorf("missing route %s -> %s: %w", from, to, domain.ErrNotFound)
	}

	r.Start, r.Finish = from, to
	return r, nil
}
