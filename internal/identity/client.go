// Package identity is the REST client for the external identity provider
// (a GoTrue-style auth API). It owns credentials, token issuance and password
// hashing; this service only orchestrates in front of it.
//
// Three client variants exist:
//   - anonymous client (anon key) for public flows,
//   - service client (service key) for privileged admin calls,
//   - a per-request client bound to one caller's bearer token via WithToken.
//
// The first two are process-wide and built once at startup; WithToken copies
// are short-lived and scoped to a single request.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sgarciam/vibra/internal/metrics"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL string
	apiKey  string
	// token overrides the bearer credential. Empty means the api key itself
	// is sent as bearer (provider convention for anonymous/service calls).
	token string
	httpc *http.Client
	// noRedirect is used by AuthorizationURL to capture the Location header
	// instead of following the upstream redirect.
	noRedirect *http.Client
}

// New returns the anonymous client.
func New(baseURL, anonKey string) *Client {
	return newClient(baseURL, anonKey)
}

// NewService returns the privileged service client. Same wire protocol; the
// service key unlocks the /admin surface.
func NewService(baseURL, serviceKey string) *Client {
	return newClient(baseURL, serviceKey)
}

func newClient(baseURL, key string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  key,
		httpc:   &http.Client{Timeout: defaultTimeout},
		noRedirect: &http.Client{
			Timeout: defaultTimeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// WithToken returns a request-scoped copy bound to the caller's bearer token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// ---- auth operations ----

// SignUp registers a new account. Depending on provider settings the response
// is a full session (auto-confirm) or just the pending user.
func (c *Client) SignUp(ctx context.Context, p SignUpParams) (*SignUpResult, error) {
	raw, err := c.do(ctx, "signup", http.MethodPost, "/signup", nil, p)
	if err != nil {
		return nil, err
	}

	// Sniff the shape: sessions carry access_token at the top level.
	var probe struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("identity: decode signup response: %w", err)
	}
	if probe.AccessToken != "" {
		var s Session
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("identity: decode signup session: %w", err)
		}
		return &SignUpResult{User: s.User, Session: &s}, nil
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("identity: decode signup user: %w", err)
	}
	return &SignUpResult{User: &u}, nil
}

// SignInWithPassword performs the password grant.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	return c.session(ctx, "sign_in", url.Values{"grant_type": {"password"}}, body)
}

// Refresh exchanges a refresh token for a fresh session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	body := map[string]string{"refresh_token": refreshToken}
	return c.session(ctx, "refresh", url.Values{"grant_type": {"refresh_token"}}, body)
}

// ExchangeCode trades an OAuth authorization code for a session. A lost or
// mismatched PKCE verifier surfaces as ErrCodeVerifierMismatch.
func (c *Client) ExchangeCode(ctx context.Context, authCode string) (*Session, error) {
	body := map[string]string{"auth_code": authCode}
	return c.session(ctx, "exchange_code", url.Values{"grant_type": {"pkce"}}, body)
}

func (c *Client) session(ctx context.Context, op string, q url.Values, body any) (*Session, error) {
	raw, err := c.do(ctx, op, http.MethodPost, "/token", q, body)
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("identity: decode session: %w", err)
	}
	return &s, nil
}

// GetUser validates an access token and returns its user.
func (c *Client) GetUser(ctx context.Context, token string) (*User, error) {
	raw, err := c.WithToken(token).do(ctx, "get_user", http.MethodGet, "/user", nil, nil)
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("identity: decode user: %w", err)
	}
	return &u, nil
}

// UpdatePassword sets a new password for the holder of token (used by the
// reset-password flow with a recovery token).
func (c *Client) UpdatePassword(ctx context.Context, token, newPassword string) (*User, error) {
	body := map[string]string{"password": newPassword}
	raw, err := c.WithToken(token).do(ctx, "update_password", http.MethodPut, "/user", nil, body)
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("identity: decode user: %w", err)
	}
	return &u, nil
}

// SignOut revokes the token's session globally on the provider side.
func (c *Client) SignOut(ctx context.Context, token string) error {
	_, err := c.WithToken(token).do(ctx, "sign_out", http.MethodPost, "/logout",
		url.Values{"scope": {"global"}}, nil)
	return err
}

// Recover asks the provider to email a password-reset link.
func (c *Client) Recover(ctx context.Context, email, redirectTo string) error {
	q := url.Values{}
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	_, err := c.do(ctx, "recover", http.MethodPost, "/recover", q, map[string]string{"email": email})
	return err
}

// AuthorizationURL asks the provider for the upstream authorization URL
// without following the redirect. Returns ErrNoAuthURL if the provider does
// not answer with a Location.
func (c *Client) AuthorizationURL(ctx context.Context, p AuthorizeParams) (string, error) {
	q := url.Values{}
	q.Set("provider", p.Provider)
	if p.RedirectTo != "" {
		q.Set("redirect_to", p.RedirectTo)
	}
	for k, v := range p.Query {
		q.Set(k, v)
	}

	u := c.baseURL + "/authorize?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := c.noRedirect.Do(req)
	metrics.ObserveProviderCall("authorize", err, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("identity: authorize: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", c.errorFrom(resp)
	}
	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", ErrNoAuthURL
	}
	return loc, nil
}

// ---- admin operations (service key) ----

// AdminGetUser looks up an account by provider user id.
func (c *Client) AdminGetUser(ctx context.Context, userID string) (*User, error) {
	raw, err := c.do(ctx, "admin_get_user", http.MethodGet, "/admin/users/"+url.PathEscape(userID), nil, nil)
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("identity: decode user: %w", err)
	}
	return &u, nil
}

// AdminUpdateUser mutates an account through the privileged API.
func (c *Client) AdminUpdateUser(ctx context.Context, userID string, p AdminUpdateUserParams) (*User, error) {
	raw, err := c.do(ctx, "admin_update_user", http.MethodPut, "/admin/users/"+url.PathEscape(userID), nil, p)
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("identity: decode user: %w", err)
	}
	return &u, nil
}

// ---- transport ----

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	bearer := c.token
	if bearer == "" {
		bearer = c.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
}

func (c *Client) do(ctx context.Context, op, method, path string, q url.Values, body any) ([]byte, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	metrics.ObserveProviderCall(op, err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("identity: %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, c.errorFrom(resp)
	}
	return io.ReadAll(resp.Body)
}

// errorFrom decodes the provider's error payload (shape varies by endpoint
// and version) and classifies it.
func (c *Client) errorFrom(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))

	var payload struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		ErrorCode        string `json:"error_code"`
		Code             any    `json:"code"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
	}
	_ = json.Unmarshal(b, &payload)

	msg := payload.Msg
	if msg == "" {
		msg = payload.Message
	}
	if msg == "" {
		msg = payload.ErrorDescription
	}
	if msg == "" {
		msg = payload.Error
	}
	code := payload.ErrorCode
	if code == "" {
		if s, ok := payload.Code.(string); ok {
			code = s
		}
	}
	return classify(resp.StatusCode, code, msg)
}
