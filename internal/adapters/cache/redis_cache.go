package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"fuel-route-service/internal/domain"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisJSONCache stores JSON-encoded values in Redis with a per-entry TTL.
// It serves both the station lookup cache and the route cache.
type RedisJSONCache struct {
	Client *redis.Client
	Prefix string
}

func NewRedisJSONCache(client *redis.Client, prefix string) *RedisJSONCache {
	return &RedisJSONCache{Client: client, Prefix: prefix}
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return client, nil
}

func (c *RedisJSONCache) GetStations(ctx context.Context, key string) ([]domain.FuelStation, bool, error) {
	var out []stationEntry
	ok, err := c.get(ctx, key, &out)
	if err != nil || !ok {
		return nil, ok, err
	}

	stations := make([]domain.FuelStation, 0, len(out))
	for _, e := range out {
		stations = append(stations, e.toStation())
	}
	return stations, true, nil
}

func (c *RedisJSONCache) SetStations(ctx context.Context, key string, stations []domain.FuelStation, ttl time.Duration) error {
	entries := make([]stationEntry, 0, len(stations))
	for _, s := range stations {
		entries = append(entries, entryOf(s))
	}
	return c.set(ctx, key, entries, ttl)
}

func (c *RedisJSONCache) GetRoute(ctx context.Context, key string) (domain.RouteData, bool, error) {
	var out routeEntry
	ok, err := c.get(ctx, key, &out)
	if err != nil || !ok {
		return domain.RouteData{}, ok, err
	}
	return out.toRoute(), true, nil
}

func (c *RedisJSONCache) SetRoute(ctx context.Context, key string, route domain.RouteData, ttl time.Duration) error {
	return c.set(ctx, key, routeEntryOf(route), ttl)
}

func (c *RedisJSONCache) get(ctx context.Context, key string, dst any) (bool, error) {
	if c.Client == nil {
		return false, errors.New("redis cache: client is nil")
	}

	b, err := c.Client.Get(ctx, c.Prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis cache: get %q: %w", key, err)
	}

	if err := json.Unmarshal(b, dst); err != nil {
		return false, fmt.Errorf("redis cache: decode %q: %w", key, err)
	}
	return true, nil
}

func (c *RedisJSONCache) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	if c.Client == nil {
		return errors.New("redis cache: client is nil")
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("redis cache: encode %q: %w", key, err)
	}

	if err := c.Client.Set(ctx, c.Prefix+key, b, ttl).Err(); err != nil {
		return fmt.Errorf("redis cache: set %q: %w", key, err)
	}
	return nil
}

// Cached wire forms. Domain types stay free of serialization tags.
type stationEntry struct {
	ID       string  `json:"id"`
	OpisID   string  `json:"opis_id,omitempty"`
	RackID   int     `json:"rack_id,omitempty"`
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	City     string  `json:"city"`
	State    string  `json:"state"`
	Price    float64 `json:"price"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Distance float64 `json:"distance"`
}

func entryOf(s domain.FuelStation) stationEntry {
	return stationEntry{
		ID: s.ID, OpisID: s.OpisID, RackID: s.RackID,
		Name: s.Name, Address: s.Address, City: s.City, State: s.State,
		Price: s.Price, Lat: s.Location.Lat, Lon: s.Location.Lon,
		Distance: s.DistanceFromPoint,
	}
}

func (e stationEntry) toStation() domain.FuelStation {
	return domain.FuelStation{
		ID: e.ID, OpisID: e.OpisID, RackID: e.RackID,
		Name: e.Name, Address: e.Address, City: e.City, State: e.State,
		Price:             e.Price,
		Location:          domain.Coordinate{Lat: e.Lat, Lon: e.Lon},
		DistanceFromPoint: e.Distance,
	}
}

type routeEntry struct {
	Coordinates     [][2]float64 `json:"coordinates"` // [lon, lat]
	DistanceMiles   float64      `json:"distance_miles"`
	DurationMinutes float64      `json:"duration_minutes"`
	Start           [2]float64   `json:"start"`
	Finish          [2]float64   `json:"finish"`
}

func routeEntryOf(r domain.RouteData) routeEntry {
	coords := make([][2]float64, 0, len(r.Coordinates))
	for _, c := range r.Coordinates {
		coords = append(coords, [2]float64{c.Lon, c.Lat})
	}
	return routeEntry{
		Coordinates:     coords,
		DistanceMiles:   r.DistanceMiles,
		DurationMinutes: r.DurationMinutes,
		Start:           [2]float64{r.Start.Lon, r.Start.Lat},
		Finish:          [2]float64{r.Finish.Lon, r.Finish.Lat},
	}
}

func (e routeEntry) toRoute() domain.RouteData {
	coords := make([]domain.Coordinate, 0, len(e.Coordinates))
	for _, c := range e.Coordinates {
		coords = append(coords, domain.Coordinate{Lon: c[0], Lat: c[1]})
	}
	return domain.RouteData{
		Coordinates:     coords,
		DistanceMiles:   e.DistanceMiles,
		DurationMinutes: e.DurationMinutes,
		Start:           domain.Coordinate{Lon: e.Start[0], Lat: e.Start[1]},
		Finish:          domain.Coordinate{Lon: e.Finish[0], Lat: e.Finish[1]},
	}
}
