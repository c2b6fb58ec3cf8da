package api

import (
	"fuel-route-service/internal/api/handlers"
	"fuel-route-service/internal/platform/metrics"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterOptions struct {
	// DB backs the health check. Nil reports liveness only.
	DB handlers.Pinger
	// Metrics enables request counting and GET /metrics.
	Metrics *metrics.Collector
	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(planner handlers.TripPlanner, opts RouterOptions) http.Handler {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(opts.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	health := &handlers.HealthHandler{DB: opts.DB}
	plans := &handlers.PlanHandler{Planner: planner}

	r.Get("/health", health.Health)
	r.Get("/api/route", plans.Index)
	r.Get("/api/route/plan", plans.Plan)
	r.Post("/api/route/plan", plans.Plan)

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	return r
}
