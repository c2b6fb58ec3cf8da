package stations

import (
	"context"
	"fuel-route-service/internal/adapters/cache"
	"fuel-route-service/internal/domain"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Integration tests against a real Postgres; skipped unless DATABASE_URL is set.
func openTestPostgres(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	store, err := OpenStore(ctx, DriverPostgres, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = store.pool.Exec(context.Background(), `DELETE FROM fuel_stations WHERE opis_id LIKE 'it-%'`)
		store.Close()
	})
	return store
}

func TestPostgresNearbyStationsOrdersByPriceAndCaps(t *testing.T) {
	store := openTestPostgres(t)
	ctx := context.Background()

	// Mid-Pacific coordinates keep test rows away from real data.
	require.NoError(t, store.Repo.SaveStations(ctx, []domain.FuelStation{
		st("it-1", "Pricey", 10.00, -170.00, 3.99),
		st("it-2", "Cheap", 10.01, -170.01, 3.19),
		st("it-3", "Middle", 10.02, -169.95, 3.49),
		st("it-4", "Outside radius", 11.50, -170.00, 2.00),
	}))

	got, err := store.Repo.NearbyStations(ctx, 10.00, -170.00, 25, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Cheap", got[0].Name)
	require.Equal(t, "Middle", got[1].Name)
	for _, s := range got {
		require.LessOrEqual(t, s.DistanceFromPoint, 25.0)
	}
}

func TestPostgresCachesRoundTrip(t *testing.T) {
	store := openTestPostgres(t)
	ctx := context.Background()

	gc := cache.NewGeocodeCache(store.SQL, cache.Postgres)
	addr := "it-" + time.Now().Format("150405.000") + ", HI, USA"
	t.Cleanup(func() {
		_, _ = store.SQL.Exec(`DELETE FROM geocode_cache WHERE address = $1`, addr)
	})

	require.NoError(t, gc.PutMany(ctx, map[string]domain.Coordinate{addr: {Lat: 10, Lon: -170}}))
	hits, err := gc.GetMany(ctx, []string{addr, "it-missing, HI, USA"})
	require.NoError(t, err)
	require.Equal(t, map[string]domain.Coordinate{addr: {Lat: 10, Lon: -170}}, hits)

	rc := cache.NewSQLRouteCache(store.SQL, cache.Postgres)
	key := "it-route:" + addr
	t.Cleanup(func() {
		_, _ = store.SQL.Exec(`DELETE FROM route_cache WHERE cache_key = $1`, key)
	})

	route := domain.RouteData{
		Coordinates:     []domain.Coordinate{{Lat: 10, Lon: -170}, {Lat: 10.5, Lon: -169.5}},
		DistanceMiles:   48.7,
		DurationMinutes: 52,
		Start:           domain.Coordinate{Lat: 10, Lon: -170},
		Finish:          domain.Coordinate{Lat: 10.5, Lon: -169.5},
	}
	require.NoError(t, rc.SetRoute(ctx, key, route, time.Minute))
	got, ok, err := rc.GetRoute(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, route, got)
}
