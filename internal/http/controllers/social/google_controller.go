package social

import (
	"errors"
	"net/http"
	"strings"

	httperrors "github.com/sgarciam/vibra/internal/http/errors"
	"github.com/sgarciam/vibra/internal/http/helpers"
	svc "github.com/sgarciam/vibra/internal/http/services/social"
	"github.com/sgarciam/vibra/internal/observability/logger"
)

type GoogleController struct {
	service svc.StartService
	cookies helpers.SessionCookies
}

func NewGoogleController(service svc.StartService, cookies helpers.SessionCookies) *GoogleController {
	return &GoogleController{service: service, cookies: cookies}
}

// Google handles GET /api/auth/google: stores the CSRF nonce cookie and
// redirects to the provider's consent screen.
func (c *GoogleController) Google(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("social.google"))

	res, err := c.service.Start(ctx, requestOrigin(r))
	if err != nil {
		log.Error("authorization start failed", logger.Err(err))
		if errors.Is(err, svc.ErrNoAllowedOrigins) {
			httperrors.WriteError(w, httperrors.ErrConfiguration)
			return
		}
		httperrors.WriteError(w, httperrors.ErrProvider)
		return
	}

	c.cookies.SetState(w, res.Nonce)
	http.Redirect(w, r, res.AuthURL, http.StatusFound)
}

// requestOrigin prefers the Origin header and falls back to reconstructing
// one from the request itself.
func requestOrigin(r *http.Request) string {
	if o := strings.TrimSpace(r.Header.Get("Origin")); o != "" {
		return o
	}

	scheme := "https"
	if r.TLS == nil && !strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "http"
	}
	if r.Host == "" {
		return ""
	}
	return scheme + "://" + r.Host
}
