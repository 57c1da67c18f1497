package auth

import (
	"errors"
	"net/http"
	"strings"

	dto "github.com/sgarciam/vibra/internal/http/dto/auth"
	httperrors "github.com/sgarciam/vibra/internal/http/errors"
	"github.com/sgarciam/vibra/internal/http/helpers"
	svc "github.com/sgarciam/vibra/internal/http/services/auth"
	"github.com/sgarciam/vibra/internal/observability/logger"
)

type LoginController struct {
	service svc.LoginService
	cookies helpers.SessionCookies
}

func NewLoginController(service svc.LoginService, cookies helpers.SessionCookies) *LoginController {
	return &LoginController{service: service, cookies: cookies}
}

// Login handles POST /api/auth/login.
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("login"))

	var req dto.LoginRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Identifier) == "" || req.Password == "" {
		httperrors.WriteError(w, httperrors.ErrValidation.WithDetail("identifier and password are required"))
		return
	}

	session, err := c.service.Login(ctx, req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, svc.ErrInvalidLogin) {
			httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
			return
		}
		log.Error("login failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrProvider)
		return
	}

	c.cookies.Set(w, session)
	helpers.WriteJSON(w, http.StatusOK, dto.LoginResponse{
		Message: "Logged in successfully",
		User:    session.User,
		Session: session,
	})
}
