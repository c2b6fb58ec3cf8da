package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"fuel-route-service/internal/domain"
	"fuel-route-service/internal/platform/obs"
	"sort"
	"strings"
)

// Rows per upsert statement; 3 parameters each keeps SQLite under its bind limit.
const geocodeUpsertBatch = 100

// GeocodeCache maps normalized addresses to coordinates in the geocode_cache
// table of the station database (SQLite or Postgres through database/sql).
type GeocodeCache struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewGeocodeCache(db *sql.DB, dialect Dialect) *GeocodeCache {
	if dialect == "" {
		dialect = SQLite
	}
	return &GeocodeCache{DB: db, Dialect: dialect}
}

// GetMany returns the cached subset of addresses. Unknown addresses are simply absent.
func (c *GeocodeCache) GetMany(ctx context.Context, addresses []string) (_ map[string]domain.Coordinate, err error) {
	defer obs.Time(ctx, "geocode.cache.GetMany")(&err)

	if c.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	uniq := uniqueAddresses(addresses)
	out := make(map[string]domain.Coordinate, len(uniq))
	if len(uniq) == 0 {
		return out, nil
	}

	var (
		q    string
		args []any
	)
	if c.Dialect == Postgres {
		q = `SELECT address, lon, lat FROM geocode_cache WHERE address = ANY($1::text[])`
		args = []any{uniq}
	} else {
		// Only the placeholder structure is interpolated; all values remain parameterized.
		q = fmt.Sprintf(`SELECT address, lon, lat FROM geocode_cache WHERE address IN (%s)`,
			strings.Join(c.Dialect.placeholders(1, len(uniq)), ", "))
		args = make([]any, 0, len(uniq))
		for _, a := range uniq {
			args = append(args, a)
		}
	}

	rows, err := c.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var addr string
		var lon, lat float64
		if err := rows.Scan(&addr, &lon, &lat); err != nil {
			return nil, fmt.Errorf("get geocode cache: scan rows: %w", err)
		}
		out[addr] = domain.Coordinate{Lon: lon, Lat: lat}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get geocode cache: row iteration: %w", err)
	}

	return out, nil
}

// PutMany upserts the given mappings in one transaction.
func (c *GeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinate) (err error) {
	defer obs.Time(ctx, "geocode.cache.PutMany")(&err)

	if c.DB == nil {
		return errors.New("geocode cache: db is nil")
	}
	if len(results) == 0 {
		return nil
	}

	keys := make([]string, 0, len(results))
	for addr := range results {
		if strings.TrimSpace(addr) == "" {
			return errors.New("insert geocode cache: empty address key")
		}
		keys = append(keys, addr)
	}
	sort.Strings(keys)

	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for start := 0; start < len(keys); start += geocodeUpsertBatch {
		batch := keys[start:min(start+geocodeUpsertBatch, len(keys))]

		args := make([]any, 0, 3*len(batch))
		for _, addr := range batch {
			coord := results[addr]
			args = append(args, addr, coord.Lon, coord.Lat)
		}

		q := `INSERT INTO geocode_cache (address, lon, lat) VALUES ` + c.Dialect.valuesRows(len(batch), 3) + `
		ON CONFLICT (address) DO UPDATE SET lon = excluded.lon, lat = excluded.lat`
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert geocode cache: batch at %d: %w", start, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert geocode cache: commit: %w", err)
	}
	return nil
}
