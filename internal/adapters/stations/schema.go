package stations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Initialize the SQLite database schema: the station table, the geocode cache
// and the route cache.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createStationsQuery := `
	CREATE TABLE IF NOT EXISTS fuel_stations (
		id INTEGER PRIMARY KEY,
		opis_id TEXT NOT NULL,
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		city TEXT NOT NULL,
		state TEXT NOT NULL,
		rack_id INTEGER NOT NULL,
		price REAL NOT NULL,
		lat REAL NOT NULL,
		lon REAL NOT NULL
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lon REAL NOT NULL,
        lat REAL NOT NULL
    );
	`

	createRouteCacheQuery := `
	CREATE TABLE IF NOT EXISTS route_cache (
        cache_key TEXT PRIMARY KEY,
        payload TEXT NOT NULL,
        expires_at INTEGER NOT NULL
    );
	`

	statements := []string{
		createStationsQuery,
		createGeocodeCacheQuery,
		createRouteCacheQuery,
		`CREATE INDEX IF NOT EXISTS idx_fuel_stations_price ON fuel_stations(price);`,
		`CREATE INDEX IF NOT EXISTS idx_fuel_stations_state ON fuel_stations(state);`,
		`CREATE INDEX IF NOT EXISTS idx_fuel_stations_lat_lon ON fuel_stations(lat, lon);`,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Initialize the Postgres schema. Statements are idempotent.
func InitPostgresSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return errors.New("init postgres schema: pool is nil")
	}

	statements := []string{
		`
		CREATE TABLE IF NOT EXISTS fuel_stations (
			id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
			opis_id TEXT NOT NULL,
			name TEXT NOT NULL,
			address TEXT NOT NULL,
			city TEXT NOT NULL,
			state CHAR(2) NOT NULL,
			rack_id INTEGER NOT NULL,
			price NUMERIC(12, 9) NOT NULL,
			lat DOUBLE PRECISION NOT NULL,
			lon DOUBLE PRECISION NOT NULL
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS geocode_cache (
			address TEXT PRIMARY KEY,
			lon DOUBLE PRECISION NOT NULL,
			lat DOUBLE PRECISION NOT NULL
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS route_cache (
			cache_key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			expires_at BIGINT NOT NULL
		);
		`,
		`CREATE INDEX IF NOT EXISTS idx_fuel_stations_price ON fuel_stations(price);`,
		`CREATE INDEX IF NOT EXISTS idx_fuel_stations_state ON fuel_stations(state);`,
		`CREATE INDEX IF NOT EXISTS idx_fuel_stations_lat_lon ON fuel_stations(lat, lon);`,
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("init postgres schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init postgres schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("init postgres schema: commit tx: %w", err)
	}

	return nil
}
