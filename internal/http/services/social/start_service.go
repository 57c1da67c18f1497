// Package social drives the OAuth authorization-code flow against the
// identity provider.
package social

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/sgarciam/vibra/internal/identity"
	"github.com/sgarciam/vibra/internal/observability/logger"
)

// ErrNoAllowedOrigins means the redirect-origin allow-list is empty. Fatal
// configuration problem, never retried.
var ErrNoAllowedOrigins = errors.New("social: no allowed origins configured")

type AuthorizeAPI interface {
	AuthorizationURL(ctx context.Context, p identity.AuthorizeParams) (string, error)
}

// StartResult carries the provider redirect plus the CSRF nonce the boundary
// layer must persist as a cookie.
type StartResult struct {
	AuthURL string
	Nonce   string
}

// StartService initiates the google authorization-code flow.
type StartService interface {
	Start(ctx context.Context, requestOrigin string) (StartResult, error)
}

type StartDeps struct {
	Identity AuthorizeAPI
	// Origins is the redirect allow-list, shared with CORS.
	Origins []string
	Prod    bool
}

type startService struct {
	deps StartDeps
}

func NewStartService(deps StartDeps) StartService {
	return &startService{deps: deps}
}

func (s *startService) Start(ctx context.Context, requestOrigin string) (StartResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("social.start"))

	origin, err := s.resolveOrigin(requestOrigin)
	if err != nil {
		return StartResult{}, err
	}

	nonce, err := newNonce()
	if err != nil {
		return StartResult{}, err
	}

	authURL, err := s.deps.Identity.AuthorizationURL(ctx, identity.AuthorizeParams{
		Provider:   "google",
		RedirectTo: origin + "/api/auth/callback",
		Query: map[string]string{
			"access_type": "offline",
			"prompt":      "consent",
			"state":       nonce,
		},
	})
	if err != nil {
		return StartResult{}, err
	}

	log.Debug("authorization flow initiated", logger.String("origin", origin))
	return StartResult{AuthURL: authURL, Nonce: nonce}, nil
}

// resolveOrigin picks the redirect origin: exact allow-list match first,
// localhost allowance outside production, then the first configured origin
// as the safe fallback for requests arriving through proxies.
func (s *startService) resolveOrigin(requestOrigin string) (string, error) {
	trim := func(v string) string { return strings.TrimRight(strings.TrimSpace(v), "/") }
	origin := trim(requestOrigin)

	for _, a := range s.deps.Origins {
		if a := trim(a); a != "" && strings.EqualFold(a, origin) {
			return origin, nil
		}
	}

	if !s.deps.Prod && origin != "" &&
		(strings.HasPrefix(origin, "http://localhost") || strings.HasPrefix(origin, "http://127.0.0.1")) {
		return origin, nil
	}

	for _, a := range s.deps.Origins {
		if a := trim(a); a != "" {
			return a, nil
		}
	}
	return "", ErrNoAllowedOrigins
}

func newNonce() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
