package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignInWithPassword_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/token", r.URL.Path)
		require.Equal(t, "password", r.URL.Query().Get("grant_type"))
		require.Equal(t, "anon-key", r.Header.Get("apikey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "alice@example.com", body["email"])

		json.NewEncoder(w).Encode(Session{
			AccessToken:  "at-1",
			RefreshToken: "rt-1",
			ExpiresIn:    3600,
			User:         &User{ID: "u-1", Email: "alice@example.com"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "anon-key")
	s, err := c.SignInWithPassword(context.Background(), "alice@example.com", "Secret1!")
	require.NoError(t, err)
	require.Equal(t, "at-1", s.AccessToken)
	require.Equal(t, "rt-1", s.RefreshToken)
	require.Equal(t, "u-1", s.User.ID)
}

func TestSignInWithPassword_InvalidCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "anon-key")
	_, err := c.SignInWithPassword(context.Background(), "alice@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignUp_DuplicateUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"code":"user_already_exists","msg":"User already registered"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "anon-key")
	_, err := c.SignUp(context.Background(), SignUpParams{Email: "a@b.co", Password: "Secret1!"})
	require.ErrorIs(t, err, ErrDuplicateUser)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
}

func TestSignUp_SessionVsPendingUser(t *testing.T) {
	// Auto-confirm: session shape.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Session{
			AccessToken: "at", RefreshToken: "rt", ExpiresIn: 3600,
			User: &User{ID: "u-1"},
		})
	}))
	c := New(srv.URL, "anon-key")
	res, err := c.SignUp(context.Background(), SignUpParams{Email: "a@b.co", Password: "Secret1!"})
	srv.Close()
	require.NoError(t, err)
	require.NotNil(t, res.Session)
	require.Equal(t, "u-1", res.User.ID)

	// Confirmation pending: bare user shape.
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(User{ID: "u-2", Email: "b@c.co"})
	}))
	defer srv.Close()
	c = New(srv.URL, "anon-key")
	res, err = c.SignUp(context.Background(), SignUpParams{Email: "b@c.co", Password: "Secret1!"})
	require.NoError(t, err)
	require.Nil(t, res.Session)
	require.Equal(t, "u-2", res.User.ID)
}

func TestExchangeCode_VerifierMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "pkce", r.URL.Query().Get("grant_type"))
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error_code":"bad_code_verifier","msg":"code challenge does not match previously saved code verifier"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "anon-key")
	_, err := c.ExchangeCode(context.Background(), "code-123")
	require.ErrorIs(t, err, ErrCodeVerifierMismatch)
}

func TestAuthorizationURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/authorize", r.URL.Path)
		require.Equal(t, "google", r.URL.Query().Get("provider"))
		require.Equal(t, "offline", r.URL.Query().Get("access_type"))
		w.Header().Set("Location", "https://accounts.example.com/o/oauth2/auth?x=1")
		w.WriteHeader(http.StatusFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "anon-key")
	u, err := c.AuthorizationURL(context.Background(), AuthorizeParams{
		Provider:   "google",
		RedirectTo: "http://localhost:3000/api/auth/callback",
		Query:      map[string]string{"access_type": "offline"},
	})
	require.NoError(t, err)
	require.Contains(t, u, "accounts.example.com")
}

func TestAuthorizationURL_NoLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "anon-key")
	_, err := c.AuthorizationURL(context.Background(), AuthorizeParams{Provider: "google"})
	require.ErrorIs(t, err, ErrNoAuthURL)
}

func TestWithToken_BearerOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		require.Equal(t, "anon-key", r.Header.Get("apikey"))
		json.NewEncoder(w).Encode(User{ID: "u-1"})
	}))
	defer srv.Close()

	c := New(srv.URL, "anon-key")
	u, err := c.GetUser(context.Background(), "user-token")
	require.NoError(t, err)
	require.Equal(t, "u-1", u.ID)
}

func TestAdminUpdateUser_ReassertsEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/admin/users/u-1", r.URL.Path)

		var body AdminUpdateUserParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "alice@example.com", body.Email)
		require.Equal(t, "NewSecret1!", body.Password)
		require.True(t, body.EmailConfirm)

		json.NewEncoder(w).Encode(User{ID: "u-1", Email: "alice@example.com"})
	}))
	defer srv.Close()

	c := NewService(srv.URL, "service-key")
	u, err := c.AdminUpdateUser(context.Background(), "u-1", AdminUpdateUserParams{
		Email: "alice@example.com", Password: "NewSecret1!", EmailConfirm: true,
	})
	require.NoError(t, err)
	require.Equal(t, "u-1", u.ID)
}

func TestGetUser_ExpiredToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"msg":"JWT expired"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "anon-key")
	_, err := c.GetUser(context.Background(), "stale")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "refresh_token", r.URL.Query().Get("grant_type"))
		json.NewEncoder(w).Encode(Session{AccessToken: "at-2", RefreshToken: "rt-2", ExpiresIn: 3600})
	}))
	defer srv.Close()

	c := New(srv.URL, "anon-key")
	s, err := c.Refresh(context.Background(), "rt-1")
	require.NoError(t, err)
	require.Equal(t, "at-2", s.AccessToken)
}

func TestErrorIsChain(t *testing.T) {
	err := classify(400, "", "Invalid login credentials")
	require.True(t, errors.Is(err, ErrInvalidCredentials))
	require.False(t, errors.Is(err, ErrDuplicateUser))
}
