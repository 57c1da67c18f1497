package auth

import (
	"errors"
	"net/http"

	dto "github.com/sgarciam/vibra/internal/http/dto/auth"
	httperrors "github.com/sgarciam/vibra/internal/http/errors"
	"github.com/sgarciam/vibra/internal/http/helpers"
	svc "github.com/sgarciam/vibra/internal/http/services/auth"
	"github.com/sgarciam/vibra/internal/observability/logger"
	"github.com/sgarciam/vibra/internal/validation"
)

type SignupController struct {
	service svc.SignupService
	cookies helpers.SessionCookies
}

func NewSignupController(service svc.SignupService, cookies helpers.SessionCookies) *SignupController {
	return &SignupController{service: service, cookies: cookies}
}

// Signup handles POST /api/auth/signup.
func (c *SignupController) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("signup"))

	var req dto.SignupRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	res, err := c.service.Signup(ctx, svc.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
		FullName: req.FullName,
	})
	if err != nil {
		log.Warn("signup failed", logger.Err(err))
		switch {
		case errors.Is(err, svc.ErrEmailInUse):
			httperrors.WriteError(w, httperrors.ErrEmailAlreadyInUse)
		case isValidationError(err):
			httperrors.WriteError(w, httperrors.ErrValidation.WithDetail(err.Error()))
		default:
			httperrors.WriteError(w, httperrors.ErrProvider)
		}
		return
	}

	// when email confirmation is disabled the provider hands back a live
	// session right away
	if res.Session != nil {
		c.cookies.Set(w, res.Session)
	}

	user := res.User
	if user == nil && res.Session != nil {
		user = res.Session.User
	}
	helpers.WriteJSON(w, http.StatusOK, dto.SignupResponse{
		Message: "Account created successfully",
		User:    user,
	})
}

func isValidationError(err error) bool {
	for _, target := range []error{
		validation.ErrEmailInvalid,
		validation.ErrUsernameLength,
		validation.ErrUsernameCharset,
		validation.ErrPasswordTooShort,
		validation.ErrPasswordTooWeak,
		validation.ErrFullNameTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
