package social

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/sgarciam/vibra/internal/http/helpers"
	svc "github.com/sgarciam/vibra/internal/http/services/social"
	"github.com/sgarciam/vibra/internal/identity"
	"github.com/sgarciam/vibra/internal/observability/logger"
)

type CallbackController struct {
	service svc.CallbackService
	cookies helpers.SessionCookies
	authURL string
}

func NewCallbackController(service svc.CallbackService, cookies helpers.SessionCookies, appURL string) *CallbackController {
	return &CallbackController{
		service: service,
		cookies: cookies,
		authURL: strings.TrimRight(appURL, "/") + "/auth",
	}
}

// Callback handles GET /api/auth/callback. Every failure path redirects to
// the client auth page with an error marker; the browser must always land on
// a human-readable page, never a JSON error.
func (c *CallbackController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("social.callback"))

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("callback panicked", logger.String("panic", "recovered"))
			c.redirectError(w, r, "server_error", "")
		}
	}()

	q := r.URL.Query()

	// provider-reported errors pass through untouched
	if provErr := strings.TrimSpace(q.Get("error")); provErr != "" {
		log.Warn("provider returned error",
			logger.String("error", provErr),
			logger.String("description", q.Get("error_description")))
		c.redirectError(w, r, provErr, q.Get("error_description"))
		return
	}

	code := strings.TrimSpace(q.Get("code"))
	if code == "" {
		c.redirectError(w, r, "no_code", "")
		return
	}

	// CSRF check: the echoed state must equal the stored nonce, byte for
	// byte, before any exchange. The nonce is single use either way.
	nonce := helpers.State(r)
	c.cookies.ClearState(w)
	if nonce == "" || q.Get("state") != nonce {
		log.Warn("state mismatch on callback")
		c.redirectError(w, r, "invalid_state", "")
		return
	}

	session, err := c.service.Exchange(ctx, code)
	if err != nil {
		log.Error("code exchange failed", logger.Err(err))
		if errors.Is(err, identity.ErrCodeVerifierMismatch) {
			c.redirectError(w, r, "auth_mismatch", "Authentication mismatch. Please try again.")
			return
		}
		c.redirectError(w, r, "exchange_failed", err.Error())
		return
	}

	c.cookies.Set(w, session)
	http.Redirect(w, r, c.service.Destination(ctx, session), http.StatusFound)
}

func (c *CallbackController) redirectError(w http.ResponseWriter, r *http.Request, code, description string) {
	v := url.Values{}
	v.Set("error", code)
	if description != "" {
		v.Set("error_description", description)
	}
	http.Redirect(w, r, c.authURL+"?"+v.Encode(), http.StatusFound)
}
