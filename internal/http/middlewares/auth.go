package middlewares

import (
	"context"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"

	jwtlib "github.com/golang-jwt/jwt/v5"

	httperrors "github.com/sgarciam/vibra/internal/http/errors"
	"github.com/sgarciam/vibra/internal/http/helpers"
	"github.com/sgarciam/vibra/internal/identity"
	"github.com/sgarciam/vibra/internal/observability/logger"
)

// UserResolver validates a bearer token against the identity provider.
type UserResolver interface {
	GetUser(ctx context.Context, token string) (*identity.User, error)
}

// WithSessionPromotion lifts the session cookies onto the request headers so
// downstream handlers and proxied calls see one credential shape. It never
// rejects: an absent cookie just leaves the request as-is, and an existing
// Authorization header is preserved.
func WithSessionPromotion() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				if ck, err := r.Cookie(helpers.AccessCookieName); err == nil && ck.Value != "" {
					r.Header.Set("Authorization", "Bearer "+ck.Value)
				}
			}
			if rt := helpers.RefreshToken(r); rt != "" && r.Header.Get("x-refresh-token") == "" {
				r.Header.Set("x-refresh-token", rt)
			}
			next.ServeHTTP(w, r)
		})
	}
}

const (
	guestCacheTTL   = 30 * time.Second
	guestCacheSweep = time.Minute
)

// WithGuest opportunistically resolves the caller for personalization.
// Every failure mode (no token, expired token, provider down) is swallowed
// and the request proceeds anonymous. Successful resolutions are memoized
// for a short TTL so hot pages do not hammer the provider.
func WithGuest(resolver UserResolver) Middleware {
	memo := gocache.New(guestCacheTTL, guestCacheSweep)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := helpers.AccessToken(r)
			if token == "" || tokenExpired(token) {
				next.ServeHTTP(w, r)
				return
			}

			if cached, ok := memo.Get(token); ok {
				if u, ok := cached.(*identity.User); ok {
					next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
					return
				}
			}

			u, err := resolver.GetUser(r.Context(), token)
			if err != nil {
				logger.From(r.Context()).Debug("guest resolution failed", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			memo.SetDefault(token, u)
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// RequireUser resolves the caller or rejects with 401. Runs after
// WithSessionPromotion so both cookie and header credentials work.
func RequireUser(resolver UserResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserFrom(r.Context()) != nil {
				next.ServeHTTP(w, r)
				return
			}

			token := helpers.AccessToken(r)
			if token == "" {
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}

			u, err := resolver.GetUser(r.Context(), token)
			if err != nil {
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// tokenExpired peeks at the JWT exp claim without verifying the signature.
// Verification is the provider's job; this only avoids a network round trip
// for tokens that are plainly stale. Unparseable tokens are not treated as
// expired, the provider gets the final word.
func tokenExpired(token string) bool {
	claims := jwtlib.MapClaims{}
	parser := jwtlib.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
