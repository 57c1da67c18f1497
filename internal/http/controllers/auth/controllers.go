// Package auth contains the controllers for the credential endpoints.
package auth

import (
	"github.com/sgarciam/vibra/internal/http/helpers"
	svc "github.com/sgarciam/vibra/internal/http/services/auth"
	"github.com/sgarciam/vibra/internal/identity"
)

// ControllerDeps carries what the controllers need beyond their services.
type ControllerDeps struct {
	Cookies  helpers.SessionCookies
	Resolver *identity.Client
}

// Controllers groups the auth endpoint controllers.
type Controllers struct {
	Signup *SignupController
	Login  *LoginController
	Me     *MeController
	Logout *LogoutController
	Reset  *ResetController
}

func NewControllers(s svc.Services, deps ControllerDeps) *Controllers {
	return &Controllers{
		Signup: NewSignupController(s.Signup, deps.Cookies),
		Login:  NewLoginController(s.Login, deps.Cookies),
		Me:     NewMeController(deps.Resolver),
		Logout: NewLogoutController(s.Logout, deps.Cookies),
		Reset:  NewResetController(s.Reset),
	}
}
