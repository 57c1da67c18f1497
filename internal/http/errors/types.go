// Package errors defines the HTTP error envelope and the closed set of
// errors the API returns.
package errors

import (
	"fmt"
	"net/http"
)

// AppError is the standard application error shape.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // original cause, logged but never sent to the client
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// FromError converts any error into an AppError, falling back to a generic
// internal error that keeps the original as cause.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternalServerError.WithCause(err)
}

// WithDetail returns a copy carrying extra detail. The base errors are shared
// package globals and must never be mutated.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithMessage returns a copy with a different user-facing message.
func (e *AppError) WithMessage(message string) *AppError {
	newErr := *e
	newErr.Message = message
	return &newErr
}

// WithCause returns a copy carrying the original error.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// Predefined errors. Controllers map service sentinels onto these.

var (
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "The request is malformed or missing parameters.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "The request body is not valid JSON.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrValidation = &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    "One or more fields are invalid.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrBodyTooLarge = &AppError{
		Code:       "BODY_TOO_LARGE",
		Message:    "The request body exceeds the allowed size.",
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentication required.",
		HTTPStatus: http.StatusUnauthorized,
	}

	// ErrInvalidCredentials is deliberately generic: it never distinguishes
	// unknown user, unknown username or wrong password.
	ErrInvalidCredentials = &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Invalid credentials.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrUsernameTaken = &AppError{
		Code:       "USERNAME_TAKEN",
		Message:    "This username is already taken.",
		HTTPStatus: http.StatusConflict,
	}

	// ErrEmailAlreadyInUse is a 400, not a 409: signup failures all share
	// the bad-request status so probing responses stay uniform.
	ErrEmailAlreadyInUse = &AppError{
		Code:       "EMAIL_ALREADY_IN_USE",
		Message:    "An account with this email already exists.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "The HTTP method is not allowed for this resource.",
		HTTPStatus: http.StatusMethodNotAllowed,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many requests. Try again later.",
		HTTPStatus: http.StatusTooManyRequests,
	}

	ErrConfiguration = &AppError{
		Code:       "CONFIGURATION_ERROR",
		Message:    "The server is not configured correctly.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrUpload = &AppError{
		Code:       "UPLOAD_FAILED",
		Message:    "The file could not be stored.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrProvider = &AppError{
		Code:       "PROVIDER_ERROR",
		Message:    "The identity provider rejected the request.",
		HTTPStatus: http.StatusBadGateway,
	}

	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "An internal error occurred.",
		HTTPStatus: http.StatusInternalServerError,
	}
)
