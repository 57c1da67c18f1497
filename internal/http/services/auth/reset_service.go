package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/sgarciam/vibra/internal/validation"
)

var (
	ErrResetInvalidEmail = errors.New("auth: invalid email address")
	ErrResetMissingToken = errors.New("auth: missing recovery token")
)

// ResetService drives the two halves of the password-reset flow: requesting
// the recovery email and applying the new password with the recovery token.
type ResetService interface {
	Request(ctx context.Context, email string) error
	Update(ctx context.Context, accessToken, password string) error
}

type ResetDeps struct {
	Anon interface {
		RecoverAPI
		PasswordUpdateAPI
	}
	// AppURL is the public base the recovery link points back to.
	AppURL string
}

type resetService struct {
	deps ResetDeps
}

func NewResetService(deps ResetDeps) ResetService {
	return &resetService{deps: deps}
}

// Request asks the provider to send a recovery email. The provider responds
// identically whether or not the account exists; so does this endpoint.
func (s *resetService) Request(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !validation.IsEmail(email) {
		return ErrResetInvalidEmail
	}

	redirectTo := strings.TrimRight(s.deps.AppURL, "/") + "/reset-password/update"
	return s.deps.Anon.Recover(ctx, email, redirectTo)
}

// Update sets the new password using the short-lived recovery access token
// from the emailed link.
func (s *resetService) Update(ctx context.Context, accessToken, password string) error {
	if strings.TrimSpace(accessToken) == "" {
		return ErrResetMissingToken
	}
	if len(password) < validation.PasswordMinLen {
		return validation.ErrPasswordTooShort
	}

	_, err := s.deps.Anon.UpdatePassword(ctx, accessToken, password)
	return err
}
