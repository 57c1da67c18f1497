package middlewares

import (
	"net/http"
	"strconv"

	httperrors "github.com/sgarciam/vibra/internal/http/errors"
	"github.com/sgarciam/vibra/internal/metrics"
	"github.com/sgarciam/vibra/internal/observability/logger"
	"github.com/sgarciam/vibra/internal/rate"
)

// WithRateLimit limits requests per client IP using the given limiter.
// A limiter backend failure lets the request through: throttling outages must
// not take the endpoint down with them.
func WithRateLimit(limiter rate.Limiter, route string) Middleware {
	if limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			if !res.Allowed {
				if res.RetryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())))
				}
				metrics.RateLimitRejectsTotal.WithLabelValues(route).Inc()
				httperrors.WriteError(w, httperrors.ErrRateLimitExceeded)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			next.ServeHTTP(w, r)
		})
	}
}
