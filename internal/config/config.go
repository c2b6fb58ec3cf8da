package config

import (
	"fmt"
	"fuel-route-service/internal/domain"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBDriver    string // sqlite | postgres
	DBPath      string
	DatabaseURL string
	SeedPath    string

	RedisURL        string
	StationCacheTTL time.Duration
	RouteCacheTTL   time.Duration

	NATSURL     string
	NATSSubject string

	MetricsEnabled bool
	MetricsAddr    string // optional separate listener; /metrics is always on the API router when enabled

	Geocoder         string // nominatim | ors | google
	RouteProvider    string // osrm | ors
	ORSAPIKey        string
	GoogleAPIKey     string
	OSRMBaseURL      string
	NominatimBaseURL string
	UserAgent        string

	Vehicle             domain.VehicleProfile
	SampleIntervalMiles float64
	LookupConcurrency   int

	CORSAllowedOrigins []string
}

// Load reads .env (when present) and the environment into a validated Config.
func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{
		Port:             Get("PORT", "8080"),
		DBDriver:         strings.ToLower(Get("DB_DRIVER", "sqlite")),
		DBPath:           Get("DB_PATH", "data/app.db"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SeedPath:         Get("SEED_PATH", "data/seeds/stations.json"),
		RedisURL:         os.Getenv("REDIS_URL"),
		NATSURL:          os.Getenv("NATS_URL"),
		NATSSubject:      Get("NATS_SUBJECT", "fuelplans.completed"),
		Geocoder:         strings.ToLower(Get("GEOCODER", "nominatim")),
		RouteProvider:    strings.ToLower(Get("ROUTE_PROVIDER", "osrm")),
		ORSAPIKey:        os.Getenv("ORS_API_KEY"),
		GoogleAPIKey:     os.Getenv("GOOGLE_API_KEY"),
		OSRMBaseURL:      Get("OSRM_BASE_URL", "https://router.project-osrm.org"),
		NominatimBaseURL: Get("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		UserAgent:        Get("USER_AGENT", "route_planner"),
	}

	var err error

	switch cfg.DBDriver {
	case "sqlite":
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER: %q", cfg.DBDriver)
	}

	if cfg.StationCacheTTL, err = durationEnv("STATION_CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.RouteCacheTTL, err = durationEnv("ROUTE_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.MetricsEnabled, err = boolEnv("METRICS_ENABLED", true); err != nil {
		return nil, err
	}

	v := domain.DefaultVehicleProfile()
	if v.RangeMiles, err = positiveFloatEnv("VEHICLE_RANGE_MILES", v.RangeMiles); err != nil {
		return nil, err
	}
	if v.MPG, err = positiveFloatEnv("VEHICLE_MPG", v.MPG); err != nil {
		return nil, err
	}
	if v.SearchRadiusMiles, err = positiveFloatEnv("SEARCH_RADIUS_MILES", v.SearchRadiusMiles); err != nil {
		return nil, err
	}
	if v.ReserveMiles, err = floatEnv("RESERVE_MILES", v.ReserveMiles); err != nil {
		return nil, err
	}
	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("invalid vehicle profile: %w", err)
	}
	cfg.Vehicle = v

	if cfg.SampleIntervalMiles, err = positiveFloatEnv("SAMPLE_INTERVAL_MILES", 100); err != nil {
		return nil, err
	}

	if raw := os.Getenv("LOOKUP_CONCURRENCY"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid LOOKUP_CONCURRENCY: %q", raw)
		}
		cfg.LookupConcurrency = n
	} else {
		cfg.LookupConcurrency = 8
	}

	cfg.CORSAllowedOrigins = splitList(Get("CORS_ALLOWED_ORIGINS", "*"))
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")

	return cfg, nil
}

// Get returns the environment value for key, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return d, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid %s: %q", key, v)
}

func floatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return f, nil
}

func positiveFloatEnv(key string, def float64) (float64, error) {
	f, err := floatEnv(key, def)
	if err != nil {
		return 0, err
	}
	if f <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
