package helpers

import (
	"net/http"
	"strings"
	"time"

	"github.com/sgarciam/vibra/internal/identity"
)

// Cookie names shared with the browser client.
const (
	AccessCookieName  = "sb-access-token"
	RefreshCookieName = "sb-refresh-token"
	StateCookieName   = "oauth_state"
)

const (
	// DefaultAccessTTL applies when the provider omits expires_in.
	DefaultAccessTTL = time.Hour
	// RefreshTTL is fixed policy, independent of the provider's expiry.
	RefreshTTL = 30 * 24 * time.Hour
	// StateTTL bounds one authorization attempt.
	StateTTL = 5 * time.Minute
)

// SessionCookies converts provider sessions to cookie directives and back.
// All cookies are HttpOnly, Path=/ and SameSite=Lax; Secure tracks the
// production flag. Lax is required on the state cookie so the browser carries
// it across the external provider redirect.
type SessionCookies struct {
	Domain string
	Secure bool
}

// Set writes the access and refresh token cookies for s.
func (sc SessionCookies) Set(w http.ResponseWriter, s *identity.Session) {
	accessTTL := DefaultAccessTTL
	if s.ExpiresIn > 0 {
		accessTTL = time.Duration(s.ExpiresIn) * time.Second
	}
	http.SetCookie(w, BuildCookie(AccessCookieName, s.AccessToken, sc.Domain, "lax", sc.Secure, accessTTL))
	http.SetCookie(w, BuildCookie(RefreshCookieName, s.RefreshToken, sc.Domain, "lax", sc.Secure, RefreshTTL))
}

// Clear removes both session cookies. Safe to call with no session present.
func (sc SessionCookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, BuildDeletionCookie(AccessCookieName, sc.Domain, "lax", sc.Secure))
	http.SetCookie(w, BuildDeletionCookie(RefreshCookieName, sc.Domain, "lax", sc.Secure))
}

// SetState stores the CSRF nonce for one authorization attempt.
func (sc SessionCookies) SetState(w http.ResponseWriter, nonce string) {
	http.SetCookie(w, BuildCookie(StateCookieName, nonce, sc.Domain, "lax", sc.Secure, StateTTL))
}

// ClearState removes the nonce cookie. The nonce is single use: callers clear
// it as soon as it has been compared, match or not.
func (sc SessionCookies) ClearState(w http.ResponseWriter) {
	http.SetCookie(w, BuildDeletionCookie(StateCookieName, sc.Domain, "lax", sc.Secure))
}

// State reads the stored nonce, empty when absent.
func State(r *http.Request) string {
	if ck, err := r.Cookie(StateCookieName); err == nil {
		return ck.Value
	}
	return ""
}

// AccessToken extracts the request credential: access cookie first, then the
// Authorization bearer header. The header is a fallback, never an override,
// so cookie sessions stay authoritative for browser flows.
func AccessToken(r *http.Request) string {
	if ck, err := r.Cookie(AccessCookieName); err == nil && ck.Value != "" {
		return ck.Value
	}
	return BearerToken(r)
}

// RefreshToken reads the refresh cookie, empty when absent.
func RefreshToken(r *http.Request) string {
	if ck, err := r.Cookie(RefreshCookieName); err == nil {
		return ck.Value
	}
	return ""
}

// BearerToken extracts the Authorization bearer token, empty when absent.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
