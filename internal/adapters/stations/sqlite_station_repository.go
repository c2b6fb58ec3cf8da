package stations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"fuel-route-service/internal/domain"
	"fuel-route-service/internal/platform/obs"
	"strconv"
)

// Rows written per transaction by SaveStations.
const saveBatchSize = 100

// SQLite-backed implementation of the StationRepository port.
type SqliteStationRepository struct{ DB *sql.DB }

func NewSqliteStationRepository(db *sql.DB) *SqliteStationRepository {
	return &SqliteStationRepository{DB: db}
}

// NearbyStations prefilters by bounding box in SQL, then applies the exact
// great-circle distance, the price ordering and the limit in Go.
func (s *SqliteStationRepository) NearbyStations(
	ctx context.Context,
	lat, lon, radiusMiles float64,
	limit int,
) ([]domain.FuelStation, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite station repository: DB is nil")
	}

	minLat, maxLat, minLon, maxLon := boundingBox(lat, lon, radiusMiles)

	query := `
	SELECT
		id, opis_id, name, address, city, state, rack_id, price, lat, lon
	FROM fuel_stations
	WHERE lat BETWEEN ? AND ?
	  AND lon BETWEEN ? AND ?;
	`
	rows, err := s.DB.QueryContext(ctx, query, minLat, maxLat, minLon, maxLon)
	if err != nil {
		return nil, fmt.Errorf("nearby stations: query fuel_stations table: %w", err)
	}
	defer rows.Close()

	candidates, err := scanStations(rows)
	if err != nil {
		return nil, fmt.Errorf("nearby stations: %w", err)
	}

	return filterNearby(candidates, lat, lon, radiusMiles, limit), nil
}

// Return all stations stored in the database, ordered by id.
func (s *SqliteStationRepository) ListStations(ctx context.Context) ([]domain.FuelStation, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite station repository: DB is nil")
	}

	query := `
	SELECT
		id, opis_id, name, address, city, state, rack_id, price, lat, lon
	FROM fuel_stations
	ORDER BY id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stations: query fuel_stations table: %w", err)
	}
	defer rows.Close()

	stations, err := scanStations(rows)
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	return stations, nil
}

// SaveStations inserts stations in transactions of saveBatchSize rows.
// Stations with an ID replace the stored row; stations without one get a new id.
func (s *SqliteStationRepository) SaveStations(ctx context.Context, stations []domain.FuelStation) (err error) {
	defer obs.Time(ctx, "stations.sqlite.SaveStations")(&err)

	if s.DB == nil {
		return errors.New("sqlite station repository: DB is nil")
	}

	for start := 0; start < len(stations); start += saveBatchSize {
		end := min(start+saveBatchSize, len(stations))
		if err := s.saveBatch(ctx, stations[start:end]); err != nil {
			return fmt.Errorf("save stations: batch at %d: %w", start, err)
		}
	}
	return nil
}

func (s *SqliteStationRepository) saveBatch(ctx context.Context, batch []domain.FuelStation) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO fuel_stations (
		id, opis_id, name, address, city, state, rack_id, price, lat, lon
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, st := range batch {
		var id any
		if st.ID != "" {
			n, err := strconv.ParseInt(st.ID, 10, 64)
			if err != nil {
				return fmt.Errorf("station id %q is not numeric: %w", st.ID, domain.ErrInvalidInput)
			}
			id = n
		}

		if _, err := stmt.ExecContext(ctx,
			id, st.OpisID, st.Name, st.Address, st.City, st.State,
			st.RackID, st.Price, st.Location.Lat, st.Location.Lon,
		); err != nil {
			return fmt.Errorf("insert opis_id=%s: %w", st.OpisID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func scanStations(rows *sql.Rows) ([]domain.FuelStation, error) {
	stations := make([]domain.FuelStation, 0, 64)
	for rows.Next() {
		var (
			id     int64
			st     domain.FuelStation
			lat    float64
			lon    float64
			rackID int
		)
		if err := rows.Scan(
			&id, &st.OpisID, &st.Name, &st.Address, &st.City, &st.State,
			&rackID, &st.Price, &lat, &lon,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		st.ID = strconv.FormatInt(id, 10)
		st.RackID = rackID
		st.Location = domain.Coordinate{Lat: lat, Lon: lon}
		stations = append(stations, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return stations, nil
}
