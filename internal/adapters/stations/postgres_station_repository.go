package stations

import (
	"context"
	"errors"
	"fmt"
	"fuel-route-service/internal/domain"
	"fuel-route-service/internal/platform/obs"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres-backed implementation of the StationRepository port.
// Distance filtering and ordering happen in SQL.
type PostgresStationRepository struct{ Pool *pgxpool.Pool }

func NewPostgresStationRepository(pool *pgxpool.Pool) *PostgresStationRepository {
	return &PostgresStationRepository{Pool: pool}
}

const nearbyStationsQuery = `
SELECT id, opis_id, name, address, city, state, rack_id, price, lat, lon, dist
FROM (
	SELECT
		id, opis_id, name, address, city, state, rack_id, price::float8 AS price, lat, lon,
		$1::float8 * 2 * asin(sqrt(
			power(sin(radians(lat - $2::float8) / 2), 2) +
			cos(radians($2::float8)) * cos(radians(lat)) *
			power(sin(radians(lon - $3::float8) / 2), 2)
		)) AS dist
	FROM fuel_stations
	WHERE lat BETWEEN $4 AND $5
	  AND lon BETWEEN $6 AND $7
) s
WHERE dist <= $8
ORDER BY price, dist, id
LIMIT $9;
`

func (p *PostgresStationRepository) NearbyStations(
	ctx context.Context,
	lat, lon, radiusMiles float64,
	limit int,
) ([]domain.FuelStation, error) {
	if p.Pool == nil {
		return nil, errors.New("postgres station repository: pool is nil")
	}

	minLat, maxLat, minLon, maxLon := boundingBox(lat, lon, radiusMiles)

	// LIMIT NULL is "no limit".
	var lim any
	if limit > 0 {
		lim = limit
	}

	rows, err := p.Pool.Query(ctx, nearbyStationsQuery,
		domain.EarthRadiusMiles, lat, lon,
		minLat, maxLat, minLon, maxLon,
		radiusMiles, lim,
	)
	if err != nil {
		return nil, fmt.Errorf("nearby stations: query fuel_stations table: %w", err)
	}
	defer rows.Close()

	stations := make([]domain.FuelStation, 0, max(limit, 0))
	for rows.Next() {
		var (
			id       int64
			st       domain.FuelStation
			lat, lon float64
		)
		if err := rows.Scan(
			&id, &st.OpisID, &st.Name, &st.Address, &st.City, &st.State,
			&st.RackID, &st.Price, &lat, &lon, &st.DistanceFromPoint,
		); err != nil {
			return nil, fmt.Errorf("nearby stations: scan row: %w", err)
		}
		st.ID = strconv.FormatInt(id, 10)
		st.Location = domain.Coordinate{Lat: lat, Lon: lon}
		stations = append(stations, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("nearby stations: row iteration: %w", err)
	}

	return stations, nil
}

func (p *PostgresStationRepository) ListStations(ctx context.Context) ([]domain.FuelStation, error) {
	if p.Pool == nil {
		return nil, errors.New("postgres station repository: pool is nil")
	}

	rows, err := p.Pool.Query(ctx, `
	SELECT id, opis_id, name, address, city, state, rack_id, price::float8, lat, lon
	FROM fuel_stations
	ORDER BY id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list stations: query fuel_stations table: %w", err)
	}

	stations, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.FuelStation, error) {
		var (
			id       int64
			st       domain.FuelStation
			lat, lon float64
		)
		err := row.Scan(&id, &st.OpisID, &st.Name, &st.Address, &st.City, &st.State,
			&st.RackID, &st.Price, &lat, &lon)
		st.ID = strconv.FormatInt(id, 10)
		st.Location = domain.Coordinate{Lat: lat, Lon: lon}
		return st, err
	})
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	return stations, nil
}

// SaveStations bulk loads stations with COPY. Stations carrying an ID keep it;
// the rest are assigned ids by the identity column.
func (p *PostgresStationRepository) SaveStations(ctx context.Context, stations []domain.FuelStation) (err error) {
	defer obs.Time(ctx, "stations.postgres.SaveStations")(&err)

	if p.Pool == nil {
		return errors.New("postgres station repository: pool is nil")
	}

	var withID, withoutID [][]any
	for _, st := range stations {
		row := []any{st.OpisID, st.Name, st.Address, st.City, st.State, st.RackID, st.Price, st.Location.Lat, st.Location.Lon}
		if st.ID == "" {
			withoutID = append(withoutID, row)
			continue
		}
		id, err := strconv.ParseInt(st.ID, 10, 64)
		if err != nil {
			return fmt.Errorf("save stations: station id %q is not numeric: %w", st.ID, domain.ErrInvalidInput)
		}
		withID = append(withID, append([]any{id}, row...))
	}

	columns := []string{"opis_id", "name", "address", "city", "state", "rack_id", "price", "lat", "lon"}

	tx, err := p.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("save stations: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if len(withID) > 0 {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"fuel_stations"},
			append([]string{"id"}, columns...), pgx.CopyFromRows(withID)); err != nil {
			return fmt.Errorf("save stations: copy rows with id: %w", err)
		}
		// Keep the identity sequence ahead of explicitly inserted ids.
		if _, err := tx.Exec(ctx, `
		SELECT setval(pg_get_serial_sequence('fuel_stations', 'id'), (SELECT MAX(id) FROM fuel_stations));
		`); err != nil {
			return fmt.Errorf("save stations: advance id sequence: %w", err)
		}
	}

	if len(withoutID) > 0 {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"fuel_stations"},
			columns, pgx.CopyFromRows(withoutID)); err != nil {
			return fmt.Errorf("save stations: copy rows: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("save stations: commit tx: %w", err)
	}
	return nil
}
