package auth

import (
	"net/http"

	dto "github.com/sgarciam/vibra/internal/http/dto/auth"
	httperrors "github.com/sgarciam/vibra/internal/http/errors"
	"github.com/sgarciam/vibra/internal/http/helpers"
	"github.com/sgarciam/vibra/internal/http/middlewares"
)

type MeController struct {
	resolver middlewares.UserResolver
}

func NewMeController(resolver middlewares.UserResolver) *MeController {
	return &MeController{resolver: resolver}
}

// Me handles GET /api/auth/me. Credential order: an already-resolved context
// user, then the access cookie, then the bearer header.
func (c *MeController) Me(w http.ResponseWriter, r *http.Request) {
	if u := middlewares.UserFrom(r.Context()); u != nil {
		helpers.WriteJSON(w, http.StatusOK, dto.MeResponse{User: u})
		return
	}

	token := helpers.AccessToken(r)
	if token == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	u, err := c.resolver.GetUser(r.Context(), token)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MeResponse{User: u})
}
