// Package health exposes liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/sgarciam/vibra/internal/http/helpers"
)

// Pinger is anything whose availability gates readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Controller struct {
	deps []Pinger
}

func NewController(deps ...Pinger) *Controller {
	return &Controller{deps: deps}
}

// Healthz reports process liveness.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports whether the backing dependencies answer.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for _, d := range c.deps {
		if err := d.Ping(ctx); err != nil {
			helpers.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
			})
			return
		}
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
