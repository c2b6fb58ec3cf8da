package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry with the planner's metrics.
// A nil *Collector is valid and records nothing.
type Collector struct {
	reg *prometheus.Registry

	Plans           *prometheus.CounterVec // outcome label: complete|partial|error
	PlanDuration    prometheus.Histogram
	StopsPerPlan    prometheus.Histogram
	StationLookups  *prometheus.CounterVec // result label: ok|error
	CacheRequests   *prometheus.CounterVec // cache, result labels
	EventsPublished *prometheus.CounterVec // result label: ok|error
	HTTPRequests    *prometheus.CounterVec // status label
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fuelroute_plans_total",
			Help: "Trip plans computed, by outcome.",
		}, []string{"outcome"}),
		PlanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fuelroute_plan_duration_seconds",
			Help:    "End-to-end duration of a trip plan.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		StopsPerPlan: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fuelroute_plan_stops",
			Help:    "Number of fuel stops per plan.",
			Buckets: prometheus.LinearBuckets(0, 1, 10),
		}),
		StationLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fuelroute_station_lookups_total",
			Help: "Nearby station lookups, by result.",
		}, []string{"result"}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fuelroute_cache_requests_total",
			Help: "Cache lookups, by cache and result.",
		}, []string{"cache", "result"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fuelroute_events_published_total",
			Help: "Plan events published, by result.",
		}, []string{"result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fuelroute_http_requests_total",
			Help: "HTTP requests served, by status code.",
		}, []string{"status"}),
	}

	reg.MustRegister(
		c.Plans, c.PlanDuration, c.StopsPerPlan,
		c.StationLookups, c.CacheRequests, c.EventsPublished, c.HTTPRequests,
		collectors.NewGoCollector(),
	)

	return c
}

func (c *Collector) ObservePlan(outcome string, stops int, d time.Duration) {
	if c == nil {
		return
	}
	c.Plans.WithLabelValues(outcome).Inc()
	c.PlanDuration.Observe(d.Seconds())
	if outcome != "error" {
		c.StopsPerPlan.Observe(float64(stops))
	}
}

func (c *Collector) StationLookup(err error) {
	if c == nil {
		return
	}
	c.StationLookups.WithLabelValues(result(err)).Inc()
}

func (c *Collector) CacheHit(cache string) {
	if c == nil {
		return
	}
	c.CacheRequests.WithLabelValues(cache, "hit").Inc()
}

func (c *Collector) CacheMiss(cache string) {
	if c == nil {
		return
	}
	c.CacheRequests.WithLabelValues(cache, "miss").Inc()
}

func (c *Collector) EventPublished(err error) {
	if c == nil {
		return
	}
	c.EventsPublished.WithLabelValues(result(err)).Inc()
}

func (c *Collector) HTTPRequest(status string) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(status).Inc()
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
