// Package onboarding contains the profile-completion controller.
package onboarding

import (
	"errors"
	"net/http"

	dto "github.com/sgarciam/vibra/internal/http/dto/onboarding"
	httperrors "github.com/sgarciam/vibra/internal/http/errors"
	"github.com/sgarciam/vibra/internal/http/helpers"
	"github.com/sgarciam/vibra/internal/http/middlewares"
	svc "github.com/sgarciam/vibra/internal/http/services/onboarding"
	"github.com/sgarciam/vibra/internal/observability/logger"
)

// formMemoryLimit is how much of the multipart body is buffered in memory;
// bigger parts spill to temp files.
const formMemoryLimit = 4 << 20

type Controller struct {
	service        svc.Service
	cookies        helpers.SessionCookies
	maxAvatarBytes int64
}

func NewController(service svc.Service, cookies helpers.SessionCookies, maxAvatarBytes int64) *Controller {
	return &Controller{service: service, cookies: cookies, maxAvatarBytes: maxAvatarBytes}
}

// Finalize handles POST /api/auth/onboarding (multipart form). Requires an
// authenticated caller; the router applies RequireUser in front.
func (c *Controller) Finalize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("onboarding"))

	user := middlewares.UserFrom(ctx)
	if user == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, c.maxAvatarBytes+formMemoryLimit)
	if err := r.ParseMultipartForm(formMemoryLimit); err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("expected a multipart form"))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	in := svc.Input{
		Username: r.FormValue("username"),
		Gender:   r.FormValue("gender"),
		Password: r.FormValue("password"),
	}

	if file, header, err := r.FormFile("avatar"); err == nil {
		defer file.Close()
		if header.Size > c.maxAvatarBytes {
			httperrors.WriteError(w, httperrors.ErrBodyTooLarge.WithDetail("avatar exceeds the size limit"))
			return
		}
		in.Avatar = &svc.Avatar{
			Name:     header.Filename,
			Size:     header.Size,
			MimeType: header.Header.Get("Content-Type"),
			Reader:   file,
		}
	}

	res, err := c.service.Finalize(ctx, user, in)
	if err != nil {
		log.Warn("onboarding failed", logger.UserID(user.ID), logger.Err(err))
		switch {
		case errors.Is(err, svc.ErrUsernameTooShort),
			errors.Is(err, svc.ErrPasswordTooShort),
			errors.Is(err, svc.ErrUnsupportedMime):
			httperrors.WriteError(w, httperrors.ErrValidation.WithDetail(err.Error()))
		case errors.Is(err, svc.ErrUsernameTaken):
			httperrors.WriteError(w, httperrors.ErrUsernameTaken)
		case errors.Is(err, svc.ErrAvatarUpload):
			httperrors.WriteError(w, httperrors.ErrUpload)
		default:
			httperrors.WriteError(w, httperrors.ErrProvider)
		}
		return
	}

	if res.Session != nil {
		c.cookies.Set(w, res.Session)
	}

	helpers.WriteJSON(w, http.StatusOK, dto.Response{
		Message:   "Onboarding completed successfully",
		AvatarURL: res.AvatarURL,
		Session:   res.Session,
	})
}
