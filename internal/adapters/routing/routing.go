package routing

import (
	"fmt"
	"fuel-route-service/internal/domain"
	"fuel-route-service/internal/platform/httpx"
	"fuel-route-service/internal/ports"
	"strings"

	"github.com/paulmach/orb"
)

const (
	KindOSRM = "osrm"
	KindORS  = "ors"

	metersPerMile = 1609.34
)

// Options configures the provider selected by New. Empty fields use provider defaults.
type Options struct {
	BaseURL   string
	APIKey    string
	Profile   string
	UserAgent string
	Client    *httpx.Client
}

// New returns the route provider strategy named by kind.
func New(kind string, opts Options) (ports.RouteProvider, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindOSRM:
		return NewOSRMRouteProvider(opts), nil
	case KindORS:
		return NewORSRouteProvider(opts)
	default:
		return nil, fmt.Errorf("routing: unknown route provider %q", kind)
	}
}

// routeFromLineString converts provider geometry (lon/lat order) and metric
// totals into RouteData.
func routeFromLineString(
	ls orb.LineString,
	meters, seconds float64,
	from, to domain.Coordinate,
) domain.RouteData {
	coords := make([]domain.Coordinate, 0, len(ls))
	for i, p := range ls {
		// Providers occasionally repeat a vertex; the resampler rejects zero-length segments.
		if i > 0 && p.Equal(ls[i-1]) {
			continue
		}
		coords = append(coords, domain.Coordinate{Lon: p.Lon(), Lat: p.Lat()})
	}

	return domain.RouteData{
		Coordinates:     coords,
		DistanceMiles:   meters / metersPerMile,
		DurationMinutes: seconds / 60,
		Start:           from,
		Finish:          to,
	}
}

func validateEndpoints(from, to domain.Coordinate) error {
	if !from.Valid() || !to.Valid() {
		return fmt.Errorf("route endpoints %s -> %s: %w", from, to, domain.ErrInvalidInput)
	}
	return nil
}
