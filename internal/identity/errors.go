package identity

import (
	"errors"
	"fmt"
	"strings"
)

// Provider failures are classified once, here at the client boundary, into a
// closed set of categories. Downstream code branches with errors.Is instead of
// matching message substrings.
var (
	ErrDuplicateUser        = errors.New("identity: user already registered")
	ErrInvalidCredentials   = errors.New("identity: invalid credentials")
	ErrInvalidToken         = errors.New("identity: invalid or expired token")
	ErrInvalidCode          = errors.New("identity: invalid authorization code")
	ErrCodeVerifierMismatch = errors.New("identity: code verifier mismatch")
	ErrUserNotFound         = errors.New("identity: user not found")
	ErrNoAuthURL            = errors.New("identity: provider returned no authorization URL")
)

// APIError is a provider error response with its classified category.
type APIError struct {
	Status   int
	Code     string
	Message  string
	category error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("identity: provider error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("identity: provider error (%d)", e.Status)
}

// Unwrap exposes the category so errors.Is(err, ErrInvalidCredentials) works.
func (e *APIError) Unwrap() error { return e.category }

// classify maps a provider error response to a category. Message matching is
// confined to this single place.
func classify(status int, code, message string) *APIError {
	e := &APIError{Status: status, Code: code, Message: message}
	msg := strings.ToLower(message)

	switch {
	case strings.Contains(msg, "already registered"),
		strings.Contains(msg, "already been registered"),
		code == "user_already_exists", code == "email_exists":
		e.category = ErrDuplicateUser
	case strings.Contains(msg, "invalid login credentials"),
		code == "invalid_credentials":
		e.category = ErrInvalidCredentials
	case strings.Contains(msg, "code verifier"),
		code == "bad_code_verifier":
		e.category = ErrCodeVerifierMismatch
	case strings.Contains(msg, "flow state"),
		strings.Contains(msg, "authorization code"),
		code == "flow_state_not_found", code == "flow_state_expired":
		e.category = ErrInvalidCode
	case status == 404, code == "user_not_found",
		strings.Contains(msg, "user not found"):
		e.category = ErrUserNotFound
	case status == 401, status == 403:
		e.category = ErrInvalidToken
	}
	return e
}
