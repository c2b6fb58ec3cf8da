package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"fuel-route-service/internal/adapters/cache"
	"fuel-route-service/internal/adapters/geocode"
	"fuel-route-service/internal/adapters/stations"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff"
)

const usage = `usage: stationtool <command> [flags]

commands:
  init              create the station and geocode cache schema
  load -file PATH   import an OPIS price sheet (CSV), geocoding each city
  seed -file PATH   import a JSON station fixture
  dump -file PATH   export all stations as a JSON fixture

Every flag can also be set from the environment, e.g. -db-driver as DB_DRIVER.`

type options struct {
	dbDriver    string
	dbPath      string
	databaseURL string
	file        string

	geocoder         string
	orsAPIKey        string
	googleAPIKey     string
	nominatimBaseURL string
	userAgent        string
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func run(ctx context.Context, cmd string, args []string) error {
	var defaultFile string
	switch cmd {
	case "init":
	case "load":
		defaultFile = "data/fuel-prices.csv"
	case "seed":
		defaultFile = "data/seeds/stations.json"
	case "dump":
		defaultFile = "data/seeds/stations.json"
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}

	fs := flag.NewFlagSet("stationtool "+cmd, flag.ExitOnError)
	var o options
	fs.StringVar(&o.dbDriver, "db-driver", stations.DriverSQLite, "station store: sqlite or postgres")
	fs.StringVar(&o.dbPath, "db-path", "data/app.db", "sqlite database file")
	fs.StringVar(&o.databaseURL, "database-url", "", "postgres connection URL")
	fs.StringVar(&o.file, "file", defaultFile, "input or output file")
	fs.StringVar(&o.geocoder, "geocoder", geocode.KindNominatim, "geocoder for load: nominatim, ors or google")
	fs.StringVar(&o.orsAPIKey, "ors-api-key", "", "openrouteservice API key")
	fs.StringVar(&o.googleAPIKey, "google-api-key", "", "Google Geocoding API key")
	fs.StringVar(&o.nominatimBaseURL, "nominatim-base-url", "", "Nominatim base URL")
	fs.StringVar(&o.userAgent, "user-agent", "route_planner", "User-Agent sent to geocoders")

	if err := ff.Parse(fs, args, ff.WithEnvVarNoPrefix()); err != nil {
		return err
	}

	dsn := o.dbPath
	if o.dbDriver == stations.DriverPostgres {
		if o.databaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
		dsn = o.databaseURL
	}

	log.Printf("Opening station store driver=%s", o.dbDriver)
	store, err := stations.OpenStore(ctx, o.dbDriver, dsn)
	if err != nil {
		return err
	}
	defer store.Close()
	log.Println("Schema ready.")

	switch cmd {
	case "load":
		return loadCSV(ctx, store, o)
	case "seed":
		n, err := stations.SeedFromJSON(ctx, store.Repo, o.file)
		if err != nil {
			return err
		}
		log.Printf("Seeding complete. stations=%d path=%s", n, o.file)
	case "dump":
		n, err := stations.DumpJSON(ctx, store.Repo, o.file)
		if err != nil {
			return err
		}
		log.Printf("Dump complete. stations=%d path=%s", n, o.file)
	}
	return nil
}

func loadCSV(ctx context.Context, store *stations.Store, o options) error {
	opts := geocode.Options{UserAgent: o.userAgent}
	switch o.geocoder {
	case geocode.KindGoogle:
		opts.APIKey = o.googleAPIKey
	case geocode.KindORS:
		opts.APIKey = o.orsAPIKey
	default:
		opts.BaseURL = o.nominatimBaseURL
	}
	g, err := geocode.New(o.geocoder, opts)
	if err != nil {
		return err
	}

	// Reuse the geocode cache so reloading a price sheet does not re-query known cities.
	geocoder := geocode.NewCachedGeocoder(g, cache.NewGeocodeCache(store.SQL, cache.Dialect(store.Driver)), nil)

	f, err := os.Open(o.file)
	if err != nil {
		return fmt.Errorf("open %q: %w", o.file, err)
	}
	defer f.Close()

	log.Printf("Loading stations path=%s geocoder=%s", o.file, o.geocoder)
	rows, stats, err := stations.LoadCSV(ctx, f, geocoder)
	if err != nil {
		return err
	}

	if err := store.Repo.SaveStations(ctx, rows); err != nil {
		return err
	}

	log.Printf("Load complete. rows=%d loaded=%d geocode_failed=%d parse_failed=%d cities=%d",
		stats.Rows, stats.Loaded, stats.GeocodeFailed, stats.ParseFailed, stats.CitiesGeocoded)
	return nil
}
