package middlewares

import (
	"context"

	"github.com/sgarciam/vibra/internal/identity"
)

type ctxKey string

const (
	ctxUserKey      ctxKey = "user"
	ctxRequestIDKey ctxKey = "request_id"
)

// WithUser injects the resolved caller into the context.
func WithUser(ctx context.Context, u *identity.User) context.Context {
	return context.WithValue(ctx, ctxUserKey, u)
}

// UserFrom returns the resolved caller, nil when the request is anonymous.
func UserFrom(ctx context.Context) *identity.User {
	if v := ctx.Value(ctxUserKey); v != nil {
		if u, ok := v.(*identity.User); ok {
			return u
		}
	}
	return nil
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetRequestID returns the request ID, empty when the middleware did not run.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(ctxRequestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
