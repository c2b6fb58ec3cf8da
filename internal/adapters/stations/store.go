package stations

import (
	"context"
	"database/sql"
	"fmt"
	"fuel-route-service/internal/platform/db"
	"fuel-route-service/internal/ports"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store bundles an initialized station repository with the database/sql handle
// opened next to it (health checks, the geocode cache).
type Store struct {
	Driver string
	Repo   ports.StationRepository
	SQL    *sql.DB

	pool *pgxpool.Pool
}

// OpenStore opens the configured backend and makes sure its schema exists.
// dsn is a file path for sqlite and a connection URL for postgres.
func OpenStore(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case "", DriverSQLite:
		conn, err := db.OpenSQLite(dsn)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		if err := InitSchema(conn); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("open store: %w", err)
		}
		return &Store{Driver: DriverSQLite, Repo: NewSqliteStationRepository(conn), SQL: conn}, nil

	case DriverPostgres:
		pool, err := db.OpenPool(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		if err := InitPostgresSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("open store: %w", err)
		}
		conn, err := db.Open(dsn)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("open store: %w", err)
		}
		return &Store{Driver: DriverPostgres, Repo: NewPostgresStationRepository(pool), SQL: conn, pool: pool}, nil

	default:
		return nil, fmt.Errorf("open store: unknown driver %q", driver)
	}
}

func (s *Store) Close() {
	if s.SQL != nil {
		_ = s.SQL.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

// SeedIfEmpty loads the fixture at path into an empty store. A missing file is not an error.
func (s *Store) SeedIfEmpty(ctx context.Context, path string) (int, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("seed file not found, skipping path=%s", path)
		return 0, nil
	}

	existing, err := s.Repo.ListStations(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed if empty: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	return SeedFromJSON(ctx, s.Repo, path)
}
