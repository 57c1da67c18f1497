package social

import (
	"context"
	"net/url"
	"strings"

	"github.com/sgarciam/vibra/internal/identity"
	"github.com/sgarciam/vibra/internal/observability/logger"
	"github.com/sgarciam/vibra/internal/store"
)

type ExchangeAPI interface {
	ExchangeCode(ctx context.Context, authCode string) (*identity.Session, error)
}

// CallbackService finishes the flow: code-for-session exchange, then the
// destination decision based on profile completion.
type CallbackService interface {
	Exchange(ctx context.Context, code string) (*identity.Session, error)
	Destination(ctx context.Context, session *identity.Session) string
}

type CallbackDeps struct {
	Identity  ExchangeAPI
	Directory store.Directory
	// AppURL is the client base URL both destinations hang off.
	AppURL string
}

type callbackService struct {
	deps CallbackDeps
}

func NewCallbackService(deps CallbackDeps) CallbackService {
	return &callbackService{deps: deps}
}

func (s *callbackService) Exchange(ctx context.Context, code string) (*identity.Session, error) {
	return s.deps.Identity.ExchangeCode(ctx, code)
}

// Destination returns the post-login redirect: home for a completed profile,
// the onboarding page otherwise. Both carry the session tokens in the URL
// fragment; some client contexts cannot read the HttpOnly cookies on first
// paint, and the fragment never reaches server logs.
func (s *callbackService) Destination(ctx context.Context, session *identity.Session) string {
	base := strings.TrimRight(s.deps.AppURL, "/")
	fragment := sessionFragment(session)

	if session.User == nil {
		return base + "/auth?onboarding=true" + fragment
	}

	profile, err := s.deps.Directory.ProfileByID(ctx, session.User.ID)
	if err != nil {
		// a profile the trigger has not materialized yet is just not onboarded
		logger.From(ctx).Debug("profile lookup failed, routing to onboarding",
			logger.UserID(session.User.ID), logger.Err(err))
		return base + "/auth?onboarding=true" + fragment
	}

	if profile.Onboarded() {
		return base + "/" + fragment
	}
	return base + "/auth?onboarding=true" + fragment
}

func sessionFragment(s *identity.Session) string {
	v := url.Values{}
	v.Set("access_token", s.AccessToken)
	v.Set("refresh_token", s.RefreshToken)
	return "#" + v.Encode()
}
