package stations

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

const DefaultStationCacheTTL = time.Hour

// LookupMetrics receives cache and lookup outcomes. *metrics.Collector satisfies it.
type LookupMetrics interface {
	CacheHit(cache string)
	CacheMiss(cache string)
	StationLookup(err error)
}

// CachedStationLookup puts a short-lived cache in front of a StationLookup.
//
// Queries are quantized (two decimals of lat/lon, roughly 0.7 miles) so that
// nearby sample points of repeated trips share entries. Cache failures are
// logged and the lookup falls through to the store. A nil Cache only records metrics.
type CachedStationLookup struct {
	Next    ports.StationLookup
	Cache   ports.StationCache
	TTL     time.Duration
	Metrics LookupMetrics
}

func NewCachedStationLookup(
	next ports.StationLookup,
	cache ports.StationCache,
	ttl time.Duration,
	m LookupMetrics,
) *CachedStationLookup {
	if ttl <= 0 {
		ttl = DefaultStationCacheTTL
	}
	return &CachedStationLookup{Next: next, Cache: cache, TTL: ttl, Metrics: m}
}

func stationCacheKey(lat, lon, radiusMiles float64, limit int) string {
	return fmt.Sprintf("stations:%.2f:%.2f:%.1f:%d", lat, lon, radiusMiles, limit)
}

func (c *CachedStationLookup) NearbyStations(
	ctx context.Context,
	lat, lon, radiusMiles float64,
	limit int,
) ([]domain.FuelStation, error) {
	if c.Next == nil {
		return nil, errors.New("cached station lookup: next lookup is nil")
	}

	key := stationCacheKey(lat, lon, radiusMiles, limit)

	if c.Cache != nil {
		cached, ok, err := c.Cache.GetStations(ctx, key)
		switch {
		case err != nil:
			log.Printf("req_id=%s op=stations.cache.get key=%s err=%v", obs.RequestID(ctx), key, err)
		case ok:
			c.hit()
			return cached, nil
		}
		c.miss()
	}

	stations, err := c.Next.NearbyStations(ctx, lat, lon, radiusMiles, limit)
	if c.Metrics != nil {
		c.Metrics.StationLookup(err)
	}
	if err != nil {
		return nil, err
	}

	if c.Cache != nil {
		if err := c.Cache.SetStations(ctx, key, stations, c.TTL); err != nil {
			log.Printf("req_id=%s op=stations.cache.set key=%s err=%v", obs.RequestID(ctx), key, err)
		}
	}

	return stations, nil
}

func (c *CachedStationLookup) hit() {
	if c.Metrics != nil {
		c.Metrics.CacheHit("stations")
	}
}

func (c *CachedStationLookup) miss() {
	if c.Metrics != nil {
		c.Metrics.CacheMiss("stations")
	}
}
