package middleware

import (
	"net/http"
	"strconv"
	"time"

	"byod/internal/observability/logging"
	"byod/internal/observability/metrics"

	"github.com/go-chi/chi/v5"
)

// unmatchedRoute labels requests no route matched, so scanners probing
// random paths cannot grow the label set.
const unmatchedRoute = "unmatched"

var unobserved = map[string]bool{"/metrics": true, "/healthz": true}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func routeLabel(r *http.Request) string {
	rc := chi.RouteContext(r.Context())
	if rc == nil {
		return unmatchedRoute
	}
	if p := rc.RoutePattern(); p != "" {
		return p
	}
	return unmatchedRoute
}

// WithMetrics records request counts and latency per chi route pattern.
func WithMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if unobserved[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)
		elapsed := time.Since(start).Seconds()

		route := routeLabel(r)
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(sr.status)).Inc()
		metrics.HTTPRequestDurationSeconds.WithLabelValues(r.Method, route).Observe(elapsed)

		logging.FromContext(r.Context()).Debug("request metrics updated",
			"route", route,
			"status", sr.status,
			"duration_seconds", elapsed,
		)
	})
}
