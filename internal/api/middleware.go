package api

import (
	"fuel-route-service/internal/platform/obs"
	"log"
	"net/http"
	"strconv"
	"time"
)

const requestIDHeader = "X-Request-ID"

// statusWriter captures the final HTTP status code and number of bytes written.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Record implicit 200 responses when handlers write without calling WriteHeader.
func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// RequestMetrics counts finished requests by status. *metrics.Collector satisfies it.
type RequestMetrics interface {
	HTTPRequest(status string)
}

// requestIDMiddleware reuses an inbound X-Request-ID or mints one, stores it on
// the context and echoes it on the response.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := obs.WithRequestID(r.Context(), r.Header.Get(requestIDHeader))
		w.Header().Set(requestIDHeader, obs.RequestID(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware logs end-to-end request duration and response size.
func loggingMiddleware(m RequestMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			sw := &statusWriter{ResponseWriter: w}

			next.ServeHTTP(sw, r)

			if sw.status == 0 {
				sw.status = http.StatusOK
			}
			if m != nil {
				m.HTTPRequest(strconv.Itoa(sw.status))
			}

			log.Printf(
				"req_id=%s method=%s path=%s status=%d bytes=%d dur=%dms",
				obs.RequestID(r.Context()), r.Method, r.URL.RequestURI(), sw.status, sw.bytes,
				time.Since(start).Milliseconds(),
			)
		})
	}
}
