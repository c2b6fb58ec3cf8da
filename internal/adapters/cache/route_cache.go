package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"fuel-route-service/internal/domain"
	"fuel-route-service/internal/platform/obs"
	"strings"
	"time"
)

// SQLRouteCache stores route provider responses in the route_cache table. It is
// the fallback route cache when no Redis is configured.
// Entries carry a unix expiry; expired rows read as misses and are overwritten on the next set.
type SQLRouteCache struct {
	DB      *sql.DB
	Dialect Dialect

	now func() time.Time
}

func NewSQLRouteCache(db *sql.DB, dialect Dialect) *SQLRouteCache {
	if dialect == "" {
		dialect = SQLite
	}
	return &SQLRouteCache{DB: db, Dialect: dialect, now: time.Now}
}

func (c *SQLRouteCache) GetRoute(ctx context.Context, key string) (_ domain.RouteData, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.GetRoute")(&err)

	if c.DB == nil {
		return domain.RouteData{}, false, errors.New("route cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return domain.RouteData{}, false, errors.New("get route cache: key must not be empty")
	}

	ph := c.Dialect.placeholders(1, 2)
	q := fmt.Sprintf(`SELECT payload FROM route_cache WHERE cache_key = %s AND expires_at > %s`, ph[0], ph[1])

	var payload string
	err = c.DB.QueryRowContext(ctx, q, key, c.clock().Unix()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RouteData{}, false, nil
	}
	if err != nil {
		return domain.RouteData{}, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	var e routeEntry
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return domain.RouteData{}, false, fmt.Errorf("get route cache: decode %q: %w", key, err)
	}
	return e.toRoute(), true, nil
}

func (c *SQLRouteCache) SetRoute(ctx context.Context, key string, route domain.RouteData, ttl time.Duration) (err error) {
	defer obs.Time(ctx, "route.cache.SetRoute")(&err)

	if c.DB == nil {
		return errors.New("route cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert route cache: key must not be empty")
	}

	b, err := json.Marshal(routeEntryOf(route))
	if err != nil {
		return fmt.Errorf("insert route cache: encode %q: %w", key, err)
	}

	q := `INSERT INTO route_cache (cache_key, payload, expires_at) VALUES ` + c.Dialect.valuesRows(1, 3) + `
	ON CONFLICT (cache_key) DO UPDATE SET payload = excluded.payload, expires_at = excluded.expires_at`
	if _, err := c.DB.ExecContext(ctx, q, key, string(b), c.clock().Add(ttl).Unix()); err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}
	return nil
}

func (c *SQLRouteCache) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}
