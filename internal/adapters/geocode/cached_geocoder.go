package geocode

import (
	"context"
	"errors"
	"fmt"
	"fuel-route-service/internal/domain"
	"fuel-route-service/internal/platform/obs"
	"fuel-route-service/internal/ports"
	"log"
)

// CacheMetrics receives hit/miss counts. *metrics.Collector satisfies it.
type CacheMetrics interface {
	CacheHit(cache string)
	CacheMiss(cache string)
}

// CachedGeocoder checks a persistent address cache before calling Next and
// writes fresh results back. Cache failures are logged, never returned.
type CachedGeocoder struct {
	Next    ports.Geocoder
	Cache   ports.GeocodeCache
	Metrics CacheMetrics
}

func NewCachedGeocoder(next ports.Geocoder, cache ports.GeocodeCache, m CacheMetrics) *CachedGeocoder {
	return &CachedGeocoder{Next: next, Cache: cache, Metrics: m}
}

func (c *CachedGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinate, error) {
	if c.Next == nil {
		return domain.Coordinate{}, errors.New("cached geocoder: next geocoder is nil")
	}

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinate{}, fmt.Errorf("geocode: empty address: %w", domain.ErrInvalidInput)
	}

	if c.Cache != nil {
		hits, err := c.Cache.GetMany(ctx, []string{norm})
		if err != nil {
			log.Printf("req_id=%s op=geocode.cache.get address=%q err=%v", obs.RequestID(ctx), norm, err)
		} else if coord, ok := hits[norm]; ok {
			if c.Metrics != nil {
				c.Metrics.CacheHit("geocode")
			}
			return coord, nil
		}
		if c.Metrics != nil {
			c.Metrics.CacheMiss("geocode")
		}
	}

	coord, err := c.Next.Geocode(ctx, norm)
	if err != nil {
		return domain.Coordinate{}, err
	}

	if c.Cache != nil {
		if err := c.Cache.PutMany(ctx, map[string]domain.Coordinate{norm: coord}); err != nil {
			log.Printf("geocode cache write failed: %v", err)
		}
	}

	return coord, nil
}
