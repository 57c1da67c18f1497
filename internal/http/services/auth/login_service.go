package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/sgarciam/vibra/internal/identity"
	"github.com/sgarciam/vibra/internal/observability/logger"
	"github.com/sgarciam/vibra/internal/store"
	"github.com/sgarciam/vibra/internal/validation"
)

// ErrInvalidLogin is the single failure every credential problem collapses
// to: unknown username, unknown email, wrong password. Indistinguishable
// responses are the point, they block identifier enumeration.
var ErrInvalidLogin = errors.New("auth: invalid credentials")

// LoginService signs a user in by email or username.
type LoginService interface {
	Login(ctx context.Context, identifier, password string) (*identity.Session, error)
}

type LoginDeps struct {
	Anon      PasswordSignIn
	Admin     AdminLookupAPI
	Directory store.Directory
}

type loginService struct {
	deps LoginDeps
}

func NewLoginService(deps LoginDeps) LoginService {
	return &loginService{deps: deps}
}

func (s *loginService) Login(ctx context.Context, identifier, password string) (*identity.Session, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("login"))

	email, err := s.resolveEmail(ctx, identifier)
	if err != nil {
		log.Info("identifier resolution failed", logger.Err(err))
		return nil, ErrInvalidLogin
	}

	session, err := s.deps.Anon.SignInWithPassword(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, ErrInvalidLogin
		}
		return nil, err
	}
	return session, nil
}

// resolveEmail maps the identifier to the email the provider needs. Email
// shapes pass through untouched; anything else is treated as a username and
// resolved through the profile directory plus a privileged account lookup.
func (s *loginService) resolveEmail(ctx context.Context, identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if validation.IsEmail(identifier) {
		return identifier, nil
	}

	userID, err := s.deps.Directory.ProfileIDByUsername(ctx, identifier)
	if err != nil {
		return "", err
	}

	u, err := s.deps.Admin.AdminGetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.Email == "" {
		return "", errors.New("auth: account has no email identity")
	}
	return u.Email, nil
}
