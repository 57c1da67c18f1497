package identity

import "time"

// Session is a provider-issued session. The service only transports it:
// tokens are opaque here, validity is the provider's business.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user,omitempty"`
}

// User is the provider's view of an account.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	AppMetadata  map[string]any `json:"app_metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at,omitempty"`
	UpdatedAt    time.Time      `json:"updated_at,omitempty"`
}

// SignUpParams carries a registration request. Data lands in user_metadata.
type SignUpParams struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

// SignUpResult is either a confirmed session or a pending user, depending on
// the provider's email-confirmation settings.
type SignUpResult struct {
	User    *User
	Session *Session
}

// AuthorizeParams configures an authorization-code flow initiation.
type AuthorizeParams struct {
	Provider   string
	RedirectTo string
	// Extra query params forwarded to the upstream provider
	// (access_type, prompt, state).
	Query map[string]string
}

// AdminUpdateUserParams mutates an account through the privileged API.
// Email is re-asserted alongside the password so accounts born via OAuth keep
// their email identity linked.
type AdminUpdateUserParams struct {
	Email        string `json:"email,omitempty"`
	Password     string `json:"password,omitempty"`
	EmailConfirm bool   `json:"email_confirm,omitempty"`
}
