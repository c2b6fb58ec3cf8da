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
	"strings"
)

const defaultGoogleURL = "https://maps.googleapis.com/maps/api"

// GoogleGeocoder resolves addresses with the Google Geocoding API.
type GoogleGeocoder struct {
	client  *httpx.Client
	apiKey  string
	baseURL string
}

type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func NewGoogleGeocoder(opts Options) (*GoogleGeocoder, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("google geocoder: api key is empty")
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultGoogleURL
	}
	return &GoogleGeocoder{
		client:  clientFor(opts),
		apiKey:  opts.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (_ domain.Coordinate, err error) {
	defer obs.Time(ctx, "google.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinate{}, fmt.Errorf("google geocode: empty address: %w", domain.ErrInvalidInput)
	}

	endpoint := g.baseURL + "/geocode/json"

	resp, err := g.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := g.client.NewRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("address", norm)
		q.Set("components", "country:US")
		q.Set("key", g.apiKey)
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("google geocode %q: %w", norm, err)
	}
	defer resp.Body.Close()

	var decoded googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinate{}, fmt.Errorf("google geocode: decode response: %w", err)
	}

	switch decoded.Status {
	case "OK":
	case "ZERO_RESULTS":
		return domain.Coordinate{}, fmt.Errorf("google geocode: no results for %q: %w", norm, domain.ErrNotFound)
	default:
		return domain.Coordinate{}, fmt.Errorf("google geocode: status %s: %s", decoded.Status, decoded.ErrorMessage)
	}

	if len(decoded.Results) == 0 {
		return domain.Coordinate{}, fmt.Errorf("google geocode: no results for %q: %w", norm, domain.ErrNotFound)
	}

	loc := decoded.Results[0].Geometry.Location
	return domain.Coordinate{Lat: loc.Lat, Lon: loc.Lng}, nil
}
