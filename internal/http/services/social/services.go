package social

import (
	"github.com/sgarciam/vibra/internal/identity"
	"github.com/sgarciam/vibra/internal/store"
)

type Deps struct {
	Anon      *identity.Client
	Directory store.Directory
	Origins   []string
	AppURL    string
	Prod      bool
}

type Services struct {
	Start    StartService
	Callback CallbackService
}

func NewServices(d Deps) Services {
	return Services{
		Start: NewStartService(StartDeps{
			Identity: d.Anon,
			Origins:  d.Origins,
			Prod:     d.Prod,
		}),
		Callback: NewCallbackService(CallbackDeps{
			Identity:  d.Anon,
			Directory: d.Directory,
			AppURL:    d.AppURL,
		}),
	}
}
