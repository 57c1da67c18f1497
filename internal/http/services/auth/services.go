package auth

import (
	"github.com/sgarciam/vibra/internal/identity"
	"github.com/sgarciam/vibra/internal/store"
)

// Deps holds the external collaborators shared by the auth services.
type Deps struct {
	Anon      *identity.Client
	Service   *identity.Client
	Directory store.Directory
	AppURL    string
}

// Services groups the auth domain services.
type Services struct {
	Login  LoginService
	Signup SignupService
	Logout LogoutService
	Reset  ResetService
}

func NewServices(d Deps) Services {
	return Services{
		Login: NewLoginService(LoginDeps{
			Anon:      d.Anon,
			Admin:     d.Service,
			Directory: d.Directory,
		}),
		Signup: NewSignupService(SignupDeps{Anon: d.Anon}),
		Logout: NewLogoutService(LogoutDeps{Anon: d.Anon}),
		Reset: NewResetService(ResetDeps{
			Anon:   d.Anon,
			AppURL: d.AppURL,
		}),
	}
}
