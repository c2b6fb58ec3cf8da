package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorCountsByLabel(t *testing.T) {
	c := NewCollector()

	c.ObservePlan("complete", 2, 150*time.Millisecond)
	c.ObservePlan("partial", 0, 80*time.Millisecond)
	c.ObservePlan("complete", 1, 90*time.Millisecond)
	c.StationLookup(nil)
	c.StationLookup(errors.New("db down"))
	c.CacheHit("stations")
	c.CacheMiss("stations")
	c.CacheMiss("stations")

	if got := testutil.ToFloat64(c.Plans.WithLabelValues("complete")); got != 2 {
		t.Fatalf("complete plans = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.StationLookups.WithLabelValues("error")); got != 1 {
		t.Fatalf("failed lookups = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.CacheRequests.WithLabelValues("stations", "miss")); got != 2 {
		t.Fatalf("station cache misses = %v, want 2", got)
	}
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.ObservePlan("error", 0, time.Second)
	c.CacheHit("routes")
	c.EventPublished(nil)
}

func TestHandlerExposesRegistry(t *testing.T) {
	c := NewCollector()
	c.HTTPRequest("200")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `fuelroute_http_requests_total{status="200"} 1`) {
		t.Fatalf("metrics output missing request counter:\n%s", body)
	}
}
