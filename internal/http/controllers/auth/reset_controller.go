package auth

import (
	"errors"
	"net/http"

	dto "github.com/sgarciam/vibra/internal/http/dto/auth"
	httperrors "github.com/sgarciam/vibra/internal/http/errors"
	"github.com/sgarciam/vibra/internal/http/helpers"
	svc "github.com/sgarciam/vibra/internal/http/services/auth"
	"github.com/sgarciam/vibra/internal/identity"
	"github.com/sgarciam/vibra/internal/observability/logger"
	"github.com/sgarciam/vibra/internal/validation"
)

type ResetController struct {
	service svc.ResetService
}

func NewResetController(service svc.ResetService) *ResetController {
	return &ResetController{service: service}
}

// Request handles POST /api/auth/reset-password (and its legacy /request
// alias). The response is the same whether or not the account exists.
func (c *ResetController) Request(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("reset.request"))

	var req dto.ResetRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	if err := c.service.Request(ctx, req.Email); err != nil {
		switch {
		case errors.Is(err, svc.ErrResetInvalidEmail):
			httperrors.WriteError(w, httperrors.ErrValidation.WithDetail("a valid email is required"))
			return
		case errors.Is(err, identity.ErrUserNotFound):
			// fall through to the generic success message
		default:
			log.Error("recovery request failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrProvider)
			return
		}
	}

	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{
		Message: "If an account exists for this email, a reset link has been sent",
	})
}

// Update handles POST /api/auth/reset-password/update.
func (c *ResetController) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("reset.update"))

	var req dto.ResetUpdateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	if err := c.service.Update(ctx, req.AccessToken, req.Password); err != nil {
		switch {
		case errors.Is(err, svc.ErrResetMissingToken),
			errors.Is(err, validation.ErrPasswordTooShort):
			httperrors.WriteError(w, httperrors.ErrValidation.WithDetail(err.Error()))
		case errors.Is(err, identity.ErrInvalidToken):
			httperrors.WriteError(w, httperrors.ErrValidation.WithDetail("the recovery link is invalid or has expired"))
		default:
			log.Error("password update failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrProvider)
		}
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Password updated successfully"})
}
