package middlewares

import (
	"net/http"

	httperrors "github.com/sgarciam/vibra/internal/http/errors"
	"github.com/sgarciam/vibra/internal/observability/logger"
	"go.uber.org/zap"
)

// WithRecover turns panics into 500 responses instead of dropped connections.
func WithRecover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log := logger.From(r.Context())
					log.Error("panic recovered",
						logger.Op("recover"),
						zap.Any("panic", rec),
					)
					httperrors.WriteError(w, httperrors.ErrInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
