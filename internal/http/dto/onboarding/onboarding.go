// Package onboarding holds the response shape for profile completion. The
// request arrives as a multipart form and is read field by field in the
// controller, so it has no JSON shape here.
package onboarding

import "github.com/sgarciam/vibra/internal/identity"

type Response struct {
	Message   string            `json:"message"`
	AvatarURL string            `json:"avatar_url,omitempty"`
	Session   *identity.Session `json:"session,omitempty"`
}
