package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/sgarciam/vibra/internal/identity"
	"github.com/sgarciam/vibra/internal/validation"
)

// ErrEmailInUse surfaces a duplicate registration with a safe message.
var ErrEmailInUse = errors.New("auth: an account with this email already exists")

// SignupService registers a new account with the identity provider.
type SignupService interface {
	Signup(ctx context.Context, in SignupInput) (*identity.SignUpResult, error)
}

type SignupInput struct {
	Email    string
	Password string
	Username string
	FullName string
}

type SignupDeps struct {
	Anon SignUpAPI
}

type signupService struct {
	deps SignupDeps
}

func NewSignupService(deps SignupDeps) SignupService {
	return &signupService{deps: deps}
}

// Signup validates the registration input and creates the account. The
// username and full name travel as user metadata; the provider-side trigger
// mirrors them into the profile directory.
func (s *signupService) Signup(ctx context.Context, in SignupInput) (*identity.SignUpResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	in.FullName = strings.TrimSpace(in.FullName)

	if err := validation.Email(in.Email); err != nil {
		return nil, err
	}
	if err := validation.Username(in.Username); err != nil {
		return nil, err
	}
	if err := validation.Password(in.Password); err != nil {
		return nil, err
	}
	if err := validation.FullName(in.FullName); err != nil {
		return nil, err
	}

	res, err := s.deps.Anon.SignUp(ctx, identity.SignUpParams{
		Email:    in.Email,
		Password: in.Password,
		Data: map[string]any{
			"username":  in.Username,
			"full_name": in.FullName,
		},
	})
	if err != nil {
		if errors.Is(err, identity.ErrDuplicateUser) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}
	return res, nil
}
