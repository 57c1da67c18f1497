package auth

import (
	"context"
	"errors"

	"github.com/sgarciam/vibra/internal/identity"
	"github.com/sgarciam/vibra/internal/observability/logger"
)

// ErrLogoutRejected means the provider refused the token. The caller still
// clears local cookies; only the status code differs.
var ErrLogoutRejected = errors.New("auth: provider rejected the session token")

// LogoutService revokes a session with the provider. Best effort: a missing
// token or a provider outage never blocks logging out locally.
type LogoutService interface {
	Logout(ctx context.Context, token string) error
}

type LogoutDeps struct {
	Anon SignOutAPI
}

type logoutService struct {
	deps LogoutDeps
}

func NewLogoutService(deps LogoutDeps) LogoutService {
	return &logoutService{deps: deps}
}

func (s *logoutService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := s.deps.Anon.SignOut(ctx, token); err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			return ErrLogoutRejected
		}
		// the session may stay alive upstream until it expires
		logger.From(ctx).Warn("provider sign-out failed", logger.Err(err))
	}
	return nil
}
