package main

import (
	"context"
	"errors"
	"fuel-route-service/internal/adapters/cache"
	"fuel-route-service/internal/adapters/events"
	"fuel-route-service/internal/adapters/geocode"
	"fuel-route-service/internal/adapters/routing"
	"fuel-route-service/internal/adapters/stations"
	"fuel-route-service/internal/api"
	"fuel-route-service/internal/config"
	"fuel-route-service/internal/platform/metrics"
	"fuel-route-service/internal/ports"
	"fuel-route-service/internal/services"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// main is the application composition root.
// It wires concrete adapters behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := cfg.DBPath
	if cfg.DBDriver == stations.DriverPostgres {
		dsn = cfg.DatabaseURL
	}
	store, err := stations.OpenStore(ctx, cfg.DBDriver, dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	// Seed demo stations on startup for local runs.
	if n, err := store.SeedIfEmpty(ctx, cfg.SeedPath); err != nil {
		log.Fatal(err)
	} else if n > 0 {
		log.Printf("seeded stations count=%d path=%s", n, cfg.SeedPath)
	}

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.NewCollector()
		if cfg.MetricsAddr != "" {
			msrv := collector.Serve(cfg.MetricsAddr)
			defer msrv.Close()
		}
	}

	var (
		stationCache ports.StationCache
		routeCache   ports.RouteCache
	)
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal(err)
		}
		defer client.Close()

		rc := cache.NewRedisJSONCache(client, "fuelroute:")
		stationCache, routeCache = rc, rc
		log.Printf("redis cache enabled station_ttl=%s route_ttl=%s", cfg.StationCacheTTL, cfg.RouteCacheTTL)
	} else {
		// Without Redis, routes are cached next to the stations and station lookups hit the store.
		routeCache = cache.NewSQLRouteCache(store.SQL, cache.Dialect(store.Driver))
	}

	geocoder, err := newGeocoder(cfg, store, collector)
	if err != nil {
		log.Fatal(err)
	}

	provider, err := routing.New(cfg.RouteProvider, routing.Options{
		BaseURL:   routeBaseURL(cfg),
		APIKey:    cfg.ORSAPIKey,
		UserAgent: cfg.UserAgent,
	})
	if err != nil {
		log.Fatal(err)
	}
	routes := routing.NewCachedRouteProvider(provider, routeCache, cfg.RouteCacheTTL, collector)

	lookup := stations.NewCachedStationLookup(store.Repo, stationCache, cfg.StationCacheTTL, collector)

	planner := services.NewTripPlanner(geocoder, routes, lookup, cfg.Vehicle)
	planner.Indexer.Concurrency = cfg.LookupConcurrency
	planner.SampleInterval = cfg.SampleIntervalMiles
	planner.Metrics = collector

	if cfg.NATSURL != "" {
		pub, err := events.NewNATSPlanPublisher(cfg.NATSURL, cfg.NATSSubject, collector)
		if err != nil {
			log.Fatal(err)
		}
		defer pub.Close()
		planner.Publisher = pub
		log.Printf("plan events enabled subject=%s", pub.Subject())
	}

	router := api.NewRouter(planner, api.RouterOptions{
		DB:             store.SQL,
		Metrics:        collector,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// Timeouts are tuned for cold-cache route planning (external API latency).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server listening addr=:%s db=%s geocoder=%s routes=%s",
			cfg.Port, store.Driver, cfg.Geocoder, cfg.RouteProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// newGeocoder builds the configured provider behind the persistent geocode cache
// that lives in the station database.
func newGeocoder(cfg *config.Config, store *stations.Store, m *metrics.Collector) (ports.Geocoder, error) {
	opts := geocode.Options{UserAgent: cfg.UserAgent}
	switch cfg.Geocoder {
	case geocode.KindGoogle:
		opts.APIKey = cfg.GoogleAPIKey
	case geocode.KindORS:
		opts.APIKey = cfg.ORSAPIKey
	default:
		opts.BaseURL = cfg.NominatimBaseURL
	}

	g, err := geocode.New(cfg.Geocoder, opts)
	if err != nil {
		return nil, err
	}

	return geocode.NewCachedGeocoder(g, cache.NewGeocodeCache(store.SQL, cache.Dialect(store.Driver)), m), nil
}

func routeBaseURL(cfg *config.Config) string {
	if cfg.RouteProvider == routing.KindORS {
		return ""
	}
	return cfg.OSRMBaseURL
}
