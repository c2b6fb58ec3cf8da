package geocode

import (
	"context"
	"errors"
	"fuel-route-service/internal/adapters/cache"
	"fuel-route-service/internal/adapters/stations"
	"fuel-route-service/internal/domain"
	"fuel-route-service/internal/platform/db"
	"fuel-route-service/internal/platform/httpx"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastClient(opts ...httpx.Option) *httpx.Client {
	return httpx.New(append(opts, httpx.WithBackoff(time.Millisecond))...)
}

func TestNominatimGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "us", r.URL.Query().Get("countrycodes"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "route_planner", r.Header.Get("User-Agent"))

		switch r.URL.Query().Get("q") {
		case "Dallas, TX":
			_, _ = io.WriteString(w, `[{"lat":"32.7767","lon":"-96.7970","display_name":"Dallas"}]`)
		default:
			_, _ = io.WriteString(w, `[]`)
		}
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(Options{BaseURL: srv.URL})

	c, err := g.Geocode(context.Background(), "  Dallas,   TX ")
	require.NoError(t, err)
	require.InDelta(t, 32.7767, c.Lat, 1e-9)
	require.InDelta(t, -96.7970, c.Lon, 1e-9)

	_, err = g.Geocode(context.Background(), "Nowhere, ZZ")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = g.Geocode(context.Background(), "   ")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNominatimSurfacesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(Options{BaseURL: srv.URL, Client: fastClient()})

	_, err := g.Geocode(context.Background(), "Dallas, TX")
	var se *httpx.StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusForbidden, se.Code)
	require.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestGoogleGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode/json", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))

		switch r.URL.Query().Get("address") {
		case "Austin, TX":
			_, _ = io.WriteString(w, `{"status":"OK","results":[{"geometry":{"location":{"lat":30.2672,"lng":-97.7431}}}]}`)
		case "Denied, TX":
			_, _ = io.WriteString(w, `{"status":"REQUEST_DENIED","error_message":"bad key","results":[]}`)
		default:
			_, _ = io.WriteString(w, `{"status":"ZERO_RESULTS","results":[]}`)
		}
	}))
	defer srv.Close()

	g, err := NewGoogleGeocoder(Options{BaseURL: srv.URL, APIKey: "secret"})
	require.NoError(t, err)

	c, err := g.Geocode(context.Background(), "Austin, TX")
	require.NoError(t, err)
	require.Equal(t, domain.Coordinate{Lat: 30.2672, Lon: -97.7431}, c)

	_, err = g.Geocode(context.Background(), "Nowhere, TX")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = g.Geocode(context.Background(), "Denied, TX")
	require.Error(t, err)
	require.False(t, errors.Is(err, domain.ErrNotFound))
	require.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestORSGeocodeDecodesFeatureCollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode/search", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("Authorization"))
		assert.Equal(t, "US", r.URL.Query().Get("boundary.country"))

		if r.URL.Query().Get("text") == "Phoenix, AZ" {
			_, _ = io.WriteString(w, `{"type":"FeatureCollection","features":[
				{"type":"Feature","geometry":{"type":"Point","coordinates":[-112.074,33.4484]},"properties":{}}
			]}`)
			return
		}
		_, _ = io.WriteString(w, `{"type":"FeatureCollection","features":[]}`)
	}))
	defer srv.Close()

	g, err := NewORSGeocoder(Options{
		BaseURL: srv.URL,
		APIKey:  "key-1",
		Client:  fastClient(httpx.WithHeader("Authorization", "key-1")),
	})
	require.NoError(t, err)

	c, err := g.Geocode(context.Background(), "Phoenix, AZ")
	require.NoError(t, err)
	require.Equal(t, domain.Coordinate{Lat: 33.4484, Lon: -112.074}, c)

	_, err = g.Geocode(context.Background(), "Atlantis, AZ")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNewSelectsStrategy(t *testing.T) {
	g, err := New("", Options{})
	require.NoError(t, err)
	require.IsType(t, &NominatimGeocoder{}, g)

	g, err = New("Google", Options{APIKey: "k"})
	require.NoError(t, err)
	require.IsType(t, &GoogleGeocoder{}, g)

	g, err = New("ors", Options{APIKey: "k"})
	require.NoError(t, err)
	require.IsType(t, &ORSGeocoder{}, g)

	_, err = New("ors", Options{})
	require.Error(t, err, "ORS requires an api key")

	_, err = New("bing", Options{})
	require.Error(t, err)
}

type countingMetrics struct{ hits, misses int }

func (m *countingMetrics) CacheHit(string)  { m.hits++ }
func (m *countingMetrics) CacheMiss(string) { m.misses++ }

func TestCachedGeocoderUsesSqliteCache(t *testing.T) {
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, stations.InitSchema(conn))

	next := NewMockGeocoder(map[string]domain.Coordinate{
		"Reno, NV": {Lat: 39.5296, Lon: -119.8138},
	})
	m := &countingMetrics{}
	g := NewCachedGeocoder(next, cache.NewGeocodeCache(conn, cache.SQLite), m)
	ctx := context.Background()

	first, err := g.Geocode(ctx, "Reno,  NV")
	require.NoError(t, err)
	second, err := g.Geocode(ctx, "Reno, NV")
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, 1, next.Calls(), "second lookup should be served from the cache")
	require.Equal(t, 1, m.hits)
	require.Equal(t, 1, m.misses)

	_, err = g.Geocode(ctx, "Atlantis, NV")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

type brokenCache struct{}

func (brokenCache) GetMany(context.Context, []string) (map[string]domain.Coordinate, error) {
	return nil, errors.New("cache offline")
}

func (brokenCache) PutMany(context.Context, map[string]domain.Coordinate) error {
	return errors.New("cache offline")
}

func TestCachedGeocoderFallsThroughOnCacheFailure(t *testing.T) {
	next := NewMockGeocoder(map[string]domain.Coordinate{"Reno, NV": {Lat: 39.5, Lon: -119.8}})
	g := NewCachedGeocoder(next, brokenCache{}, nil)

	c, err := g.Geocode(context.Background(), "Reno, NV")
	require.NoError(t, err)
	require.Equal(t, domain.Coordinate{Lat: 39.5, Lon: -119.8}, c)
}
