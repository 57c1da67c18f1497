package auth

import (
	"errors"
	"net/http"

	dto "github.com/sgarciam/vibra/internal/http/dto/auth"
	httperrors "github.com/sgarciam/vibra/internal/http/errors"
	"github.com/sgarciam/vibra/internal/http/helpers"
	svc "github.com/sgarciam/vibra/internal/http/services/auth"
)

type LogoutController struct {
	service svc.LogoutService
	cookies helpers.SessionCookies
}

func NewLogoutController(service svc.LogoutService, cookies helpers.SessionCookies) *LogoutController {
	return &LogoutController{service: service, cookies: cookies}
}

// Logout handles POST /api/auth/logout. The cookies are cleared before the
// provider call so the client never stays "logged in" locally after an
// upstream failure. Idempotent: no token is still a success.
func (c *LogoutController) Logout(w http.ResponseWriter, r *http.Request) {
	c.cookies.Clear(w)

	err := c.service.Logout(r.Context(), helpers.AccessToken(r))
	if errors.Is(err, svc.ErrLogoutRejected) {
		httperrors.WriteError(w, httperrors.ErrUnauthorized.WithDetail("session already invalid"))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.LogoutResponse{Message: "Logged out successfully"})
}
