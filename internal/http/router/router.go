// Package router ties the controllers, middlewares and routes together.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authctrl "github.com/sgarciam/vibra/internal/http/controllers/auth"
	healthctrl "github.com/sgarciam/vibra/internal/http/controllers/health"
	onbctrl "github.com/sgarciam/vibra/internal/http/controllers/onboarding"
	socialctrl "github.com/sgarciam/vibra/internal/http/controllers/social"
	httperrors "github.com/sgarciam/vibra/internal/http/errors"
	mw "github.com/sgarciam/vibra/internal/http/middlewares"
	"github.com/sgarciam/vibra/internal/rate"
)

// Deps contains everything the router mounts.
type Deps struct {
	Auth       *authctrl.Controllers
	Social     *socialctrl.Controllers
	Onboarding *onbctrl.Controller
	Health     *healthctrl.Controller

	// Resolver backs the guest and required-auth middlewares.
	Resolver mw.UserResolver
	// ResetLimiter throttles recovery email requests per IP. Nil disables.
	ResetLimiter rate.Limiter

	Metrics http.Handler

	AllowedOrigins []string
	Prod           bool
}

// New builds the HTTP handler with the full middleware stack applied.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithRecover(),
		mw.WithSecurityHeaders(),
		mw.WithCORS(d.AllowedOrigins, d.Prod),
	)

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("unknown route"))
	})

	r.Get("/healthz", d.Health.Healthz)
	r.Get("/readyz", d.Health.Readyz)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/api/auth", func(api chi.Router) {
		api.Use(mw.WithNoStore(), mw.WithSessionPromotion())

		route := func(method, pattern string, h http.HandlerFunc, extra ...mw.Middleware) {
			mws := append([]mw.Middleware{mw.WithMetrics("/api/auth" + pattern)}, extra...)
			api.Method(method, pattern, mw.Chain(h, mws...))
		}

		route(http.MethodPost, "/signup", d.Auth.Signup.Signup)
		route(http.MethodPost, "/login", d.Auth.Login.Login)
		route(http.MethodGet, "/google", d.Social.Google.Google)
		route(http.MethodGet, "/callback", d.Social.Callback.Callback)
		route(http.MethodGet, "/me", d.Auth.Me.Me, mw.WithGuest(d.Resolver))
		route(http.MethodPost, "/logout", d.Auth.Logout.Logout)

		resetLimit := mw.WithRateLimit(d.ResetLimiter, "/api/auth/reset-password")
		route(http.MethodPost, "/reset-password", d.Auth.Reset.Request, resetLimit)
		// legacy alias, same handler and budget
		route(http.MethodPost, "/reset-password/request", d.Auth.Reset.Request, resetLimit)
		route(http.MethodPost, "/reset-password/update", d.Auth.Reset.Update)

		route(http.MethodPost, "/onboarding", d.Onboarding.Finalize, mw.RequireUser(d.Resolver))
	})

	return r
}
