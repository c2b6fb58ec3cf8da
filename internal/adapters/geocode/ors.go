package geocode

import (
	"context"
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

// ORSGeocoder resolves addresses using OpenRouteService (/geocode/search).
type ORSGeocoder struct {
	client  *httpx.Client
	baseURL string
}

func NewORSGeocoder(opts Options) (*ORSGeocoder, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultORSURL
	}

	client := opts.Client
	if client == nil {
		client = httpx.New(httpx.WithUserAgent(opts.UserAgent), httpx.WithHeader("Authorization", opts.APIKey))
	}

	return &ORSGeocoder{client: client, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (o *ORSGeocoder) Geocode(ctx context.Context, address string) (_ domain.Coordinate, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinate{}, fmt.Errorf("ors geocode: empty address: %w", domain.ErrInvalidInput)
	}

	endpoint := o.baseURL + "/geocode/search"

	resp, err := o.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.client.NewRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", norm)
		q.Set("boundary.country", "US")
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("ors geocode %q: %w", norm, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("ors geocode: read response: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("ors geocode: decode response: %w", err)
	}

	if len(fc.Features) == 0 {
		return domain.Coordinate{}, fmt.Errorf("ors geocode: no results for %q: %w", norm, domain.ErrNotFound)
	}

	pt, ok := fc.Features[0].Geometry.(orb.Point)
	if !ok {
		return domain.Coordinate{}, fmt.Errorf("ors geocode: invalid coordinate format for %q", norm)
	}

	return domain.Coordinate{Lon: pt.Lon(), Lat: pt.Lat()}, nil
}
