package geocode

import (
	"fmt"
	"fuel-route-service/internal/platform/httpx"
	"fuel-route-service/internal/ports"
	"strings"
)

const (
	KindNominatim = "nominatim"
	KindGoogle    = "google"
	KindORS       = "ors"
)

// Options configures the geocoder selected by New. Empty fields use provider defaults.
type Options struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	Client    *httpx.Client
}

// New returns the geocoder strategy named by kind.
func New(kind string, opts Options) (ports.Geocoder, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindNominatim:
		return NewNominatimGeocoder(opts), nil
	case KindGoogle:
		return NewGoogleGeocoder(opts)
	case KindORS:
		return NewORSGeocoder(opts)
	default:
		return nil, fmt.Errorf("geocode: unknown geocoder %q", kind)
	}
}

// normalize ensures consistent cache keys by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func clientFor(opts Options) *httpx.Client {
	if opts.Client != nil {
		return opts.Client
	}
	return httpx.New(httpx.WithUserAgent(opts.UserAgent))
}
