package geocode

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
)

const (
	defaultNominatimURL = "https://nominatim.openstreetmap.org"
	defaultUserAgent    = "route_planner"
)

// NominatimGeocoder resolves US addresses with the OpenStreetMap Nominatim API.
type NominatimGeocoder struct {
	client  *httpx.Client
	baseURL string
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func NewNominatimGeocoder(opts Options) *NominatimGeocoder {
	if opts.UserAgent == "" {
		// Nominatim rejects requests without an identifying User-Agent.
		opts.UserAgent = defaultUserAgent
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultNominatimURL
	}
	return &NominatimGeocoder{
		client:  clientFor(opts),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (n *NominatimGeocoder) Geocode(ctx context.Context, address string) (_ domain.Coordinate, err error) {
	defer obs.Time(ctx, "nominatim.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinate{}, fmt.Errorf("nominatim geocode: empty address: %w", domain.ErrInvalidInput)
	}

	endpoint := n.baseURL + "/search"

	resp, err := n.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := n.client.NewRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("q", norm)
		q.Set("format", "jsonv2")
		q.Set("limit", "1")
		q.Set("countrycodes", "us")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("nominatim geocode %q: %w", norm, err)
	}
	defer resp.Body.Close()

	var decoded []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinate{}, fmt.Errorf("nominatim geocode: decode response: %w", err)
	}

	if len(decoded) == 0 {
		return domain.Coordinate{}, fmt.Errorf("nominatim geocode: no results for %q: %w", norm, domain.ErrNotFound)
	}

	lat, errLat := strconv.ParseFloat(decoded[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(decoded[0].Lon, 64)
	if err := errors.Join(errLat, errLon); err != nil {
		return domain.Coordinate{}, fmt.Errorf("nominatim geocode: invalid coordinate for %q: %w", norm, err)
	}

	return domain.Coordinate{Lat: lat, Lon: lon}, nil
}
