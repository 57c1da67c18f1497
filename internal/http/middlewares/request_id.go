package middlewares

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
)

// WithRequestID propagates the client's X-Request-ID or generates one.
// The ID lands in the response header and the request context.
func WithRequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
			if rid == "" {
				var b [16]byte
				_, _ = rand.Read(b[:])
				rid = hex.EncodeToString(b[:])
			}

			w.Header().Set("X-Request-ID", rid)
			ctx := setRequestID(r.Context(), rid)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
