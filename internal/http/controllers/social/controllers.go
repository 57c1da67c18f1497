// Package social contains the controllers for the OAuth flow endpoints.
package social

import (
	"github.com/sgarciam/vibra/internal/http/helpers"
	svc "github.com/sgarciam/vibra/internal/http/services/social"
)

type ControllerDeps struct {
	Cookies helpers.SessionCookies
	// AppURL is the client base used for error redirects.
	AppURL string
}

type Controllers struct {
	Google   *GoogleController
	Callback *CallbackController
}

func NewControllers(s svc.Services, deps ControllerDeps) *Controllers {
	return &Controllers{
		Google:   NewGoogleController(s.Start, deps.Cookies),
		Callback: NewCallbackController(s.Callback, deps.Cookies, deps.AppURL),
	}
}
