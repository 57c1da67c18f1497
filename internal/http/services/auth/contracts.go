// Package auth contains the services behind the credential endpoints.
package auth

import (
	"context"

	"github.com/sgarciam/vibra/internal/identity"
)

// The provider surface is split per concern so each service declares exactly
// what it uses and tests can fake only that.

type PasswordSignIn interface {
	SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error)
}

type SignUpAPI interface {
	SignUp(ctx context.Context, p identity.SignUpParams) (*identity.SignUpResult, error)
}

type SignOutAPI interface {
	SignOut(ctx context.Context, token string) error
}

type RecoverAPI interface {
	Recover(ctx context.Context, email, redirectTo string) error
}

type PasswordUpdateAPI interface {
	UpdatePassword(ctx context.Context, token, newPassword string) (*identity.User, error)
}

type AdminLookupAPI interface {
	AdminGetUser(ctx context.Context, userID string) (*identity.User, error)
}
