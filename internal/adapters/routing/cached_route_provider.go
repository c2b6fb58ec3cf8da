package routing

import (
	"context"
	"errors"
	"fmt"
	"fuel-route-service/internal/domain"
	"fuel-route-service/internal/platform/obs"
	"fuel-route-service/internal/ports"
	"log"
	"time"
)

const DefaultRouteCacheTTL = 24 * time.Hour

// CacheMetrics receives hit/miss counts. *metrics.Collector satisfies it.
type CacheMetrics interface {
	CacheHit(cache string)
	CacheMiss(cache string)
}

// CachedRouteProvider serves repeated origin/destination pairs from a RouteCache.
// Endpoints are rounded to four decimals (about 35 ft) for the key.
type CachedRouteProvider struct {
	Next    ports.RouteProvider
	Cache   ports.RouteCache
	TTL     time.Duration
	Metrics CacheMetrics
}

func NewCachedRouteProvider(
	next ports.RouteProvider,
	cache ports.RouteCache,
	ttl time.Duration,
	m CacheMetrics,
) *CachedRouteProvider {
	if ttl <= 0 {
		ttl = DefaultRouteCacheTTL
	}
	return &CachedRouteProvider{Next: next, Cache: cache, TTL: ttl, Metrics: m}
}

func routeCacheKey(from, to domain.Coordinate) string {
	return fmt.Sprintf("route:%.4f,%.4f:%.4f,%.4f", from.Lat, from.Lon, to.Lat, to.Lon)
}

func (c *CachedRouteProvider) GetRoute(
	ctx context.Context,
	from domain.Coordinate,
	to domain.Coordinate,
) (domain.RouteData, error) {
	if c.Next == nil {
		return domain.RouteData{}, errors.New("cached route provider: next provider is nil")
	}

	key := routeCacheKey(from, to)

	if c.Cache != nil {
		route, ok, err := c.Cache.GetRoute(ctx, key)
		switch {
		case err != nil:
			log.Printf("req_id=%s op=route.cache.get key=%s err=%v", obs.RequestID(ctx), key, err)
		case ok:
			if c.Metrics != nil {
				c.Metrics.CacheHit("routes")
			}
			// The cached geometry is shared; endpoints reflect this request.
			route.Start, route.Finish = from, to
			return route, nil
		}
		if c.Metrics != nil {
			c.Metrics.CacheMiss("routes")
		}
	}

	route, err := c.Next.GetRoute(ctx, from, to)
	if err != nil {
		return domain.RouteData{}, err
	}

	if c.Cache != nil {
		if err := c.Cache.SetRoute(ctx, key, route, c.TTL); err != nil {
			log.Printf("req_id=%s op=route.cache.set key=%s err=%v", obs.RequestID(ctx), key, err)
		}
	}

	return route, nil
}
