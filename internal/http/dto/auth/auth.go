// Package auth holds the request/response shapes for the auth endpoints.
package auth

import "github.com/sgarciam/vibra/internal/identity"

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

type SignupResponse struct {
	Message string         `json:"message"`
	User    *identity.User `json:"user,omitempty"`
}

// LoginRequest carries the raw identifier: an email or a username,
// classified server-side.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type LoginResponse struct {
	Message string            `json:"message"`
	User    *identity.User    `json:"user,omitempty"`
	Session *identity.Session `json:"session,omitempty"`
}

type MeResponse struct {
	User *identity.User `json:"user"`
}

type LogoutResponse struct {
	Message string `json:"message"`
}

type ResetRequest struct {
	Email string `json:"email"`
}

type ResetUpdateRequest struct {
	Password    string `json:"password"`
	AccessToken string `json:"accessToken"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
