package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"fuel-route-service/internal/domain"
	"fuel-route-service/internal/platform/httpx"
	"fuel-route-service/internal/platform/obs"
	"net/http"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const defaultOSRMURL = "https://router.project-osrm.org"

// OSRMRouteProvider requests driving routes from an OSRM server.
type OSRMRouteProvider struct {
	client  *httpx.Client
	baseURL string
	profile string
}

type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64           `json:"distance"` // meters
		Duration float64           `json:"duration"` // seconds
		Geometry *geojson.Geometry `json:"geometry"`
	} `json:"routes"`
}

func NewOSRMRouteProvider(opts Options) *OSRMRouteProvider {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultOSRMURL
	}
	profile := opts.Profile
	if profile == "" {
		profile = "driving"
	}
	client := opts.Client
	if client == nil {
		client = httpx.New(httpx.WithUserAgent(opts.UserAgent))
	}

	return &OSRMRouteProvider{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: profile,
	}
}

// GetRoute returns the full-resolution route geometry between from and to.
func (o *OSRMRouteProvider) GetRoute(
	ctx context.Context,
	from domain.Coordinate,
	to domain.Coordinate,
) (_ domain.RouteData, err error) {
	defer obs.Time(ctx, "osrm.GetRoute")(&err)

	if err := validateEndpoints(from, to); err != nil {
		return domain.RouteData{}, fmt.Errorf("osrm route: %w", err)
	}

	// OSRM expects lon,lat pairs.
	endpoint := fmt.Sprintf("%s/route/v1/%s/%s;%s",
		o.baseURL, o.profile, lonLat(from), lonLat(to))

	resp, err := o.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.client.NewRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("overview", "full")
		q.Set("geometries", "geojson")
		q.Set("steps", "false")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		// OSRM reports unroutable requests as 400 with a NoRoute/NoSegment code.
		var se *httpx.StatusError
		if errors.As(err, &se) && se.Code == http.StatusBadRequest &&
			(strings.Contains(se.Body, "NoRoute") || strings.Contains(se.Body, "NoSegment")) {
			return domain.RouteData{}, fmt.Errorf("osrm route %s -> %s: %w", from, to, domain.ErrNotFound)
		}
		return domain.RouteData{}, fmt.Errorf("osrm route: %w", err)
	}
	defer resp.Body.Close()

	var decoded osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.RouteData{}, fmt.Errorf("osrm route: decode response: %w", err)
	}

	if decoded.Code != "Ok" || len(decoded.Routes) == 0 {
		return domain.RouteData{}, fmt.Errorf("osrm route %s -> %s: code=%s %s: %w",
			from, to, decoded.Code, decoded.Message, domain.ErrNotFound)
	}

	route := decoded.Routes[0]
	if route.Geometry == nil {
		return domain.RouteData{}, fmt.Errorf("osrm route: response has no geometry")
	}
	ls, ok := route.Geometry.Geometry().(orb.LineString)
	if !ok {
		return domain.RouteData{}, fmt.Errorf("osrm route: unexpected geometry type %T", route.Geometry.Geometry())
	}

	return routeFromLineString(ls, route.Distance, route.Duration, from, to), nil
}

func lonLat(c domain.Coordinate) string {
	return strconv.FormatFloat(c.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}
