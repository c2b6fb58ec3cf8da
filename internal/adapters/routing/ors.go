package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"fuel-route-service/internal/domain"
	"fuel-route-service/internal/platform/httpx"
	"fuel-route-service/internal/platform/obs"
	"io"
	"net/http"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const defaultORSURL = "https://api.openrouteservice.org"

// ORSRouteProvider requests driving routes from OpenRouteService directions.
type ORSRouteProvider struct {
	client  *httpx.Client
	baseURL string
	profile string
}

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsSummary struct {
	Distance float64 `json:"distance"` // meters
	Duration float64 `json:"duration"` // seconds
}

func NewORSRouteProvider(opts Options) (*ORSRouteProvider, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultORSURL
	}
	profile := opts.Profile
	if profile == "" {
		profile = "driving-hgv"
	}
	client := opts.Client
	if client == nil {
		client = httpx.New(httpx.WithUserAgent(opts.UserAgent), httpx.WithHeader("Authorization", opts.APIKey))
	}

	return &ORSRouteProvider{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: profile,
	}, nil
}

func (o *ORSRouteProvider) GetRoute(
	ctx context.Context,
	from domain.Coordinate,
	to domain.Coordinate,
) (_ domain.RouteData, err error) {
	defer obs.Time(ctx, "ors.GetRoute")(&err)

	if err := validateEndpoints(from, to); err != nil {
		return domain.RouteData{}, fmt.Errorf("ors route: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, o.profile)

	body, err := json.Marshal(directionsRequest{
		Coordinates: [][]float64{from.CoordsToList(), to.CoordsToList()},
	})
	if err != nil {
		return domain.RouteData{}, fmt.Errorf("ors route: marshal directions request: %w", err)
	}

	resp, err := o.client.DoWithRetry(ctx, func() (*http.Request, error) {
		return o.client.NewRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	})
	if err != nil {
		// ORS answers 404 when no routable point is near an endpoint.
		var se *httpx.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return domain.RouteData{}, fmt.Errorf("ors route %s -> %s: %w", from, to, domain.ErrNotFound)
		}
		return domain.RouteData{}, fmt.Errorf("ors route: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.RouteData{}, fmt.Errorf("ors route: read response: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return domain.RouteData{}, fmt.Errorf("ors route: decode response: %w", err)
	}
	if len(fc.Features) == 0 {
		return domain.RouteData{}, fmt.Errorf("ors route %s -> %s: %w", from, to, domain.ErrNotFound)
	}

	feature := fc.Features[0]
	ls, ok := feature.Geometry.(orb.LineString)
	if !ok {
		return domain.RouteData{}, fmt.Errorf("ors route: unexpected geometry type %T", feature.Geometry)
	}

	summary, err := decodeSummary(feature.Properties)
	if err != nil {
		return domain.RouteData{}, fmt.Errorf("ors route: %w", err)
	}

	return routeFromLineString(ls, summary.Distance, summary.Duration, from, to), nil
}

// decodeSummary reads properties.summary, re-encoding the generic property map.
func decodeSummary(props geojson.Properties) (directionsSummary, error) {
	var s directionsSummary

	raw, ok := props["summary"]
	if !ok {
		return s, errors.New("response has no summary")
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return s, fmt.Errorf("encode summary: %w", err)
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("decode summary: %w", err)
	}
	return s, nil
}
