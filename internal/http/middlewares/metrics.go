package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/sgarciam/vibra/internal/metrics"
)

// WithMetrics records request counts and latencies per route pattern.
// The route label is the registered pattern, not the raw path, to keep
// cardinality bounded.
func WithMetrics(route string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}
