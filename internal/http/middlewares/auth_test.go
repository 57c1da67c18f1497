package middlewares

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sgarciam/vibra/internal/http/helpers"
	"github.com/sgarciam/vibra/internal/identity"
)

type fakeResolver struct {
	user  *identity.User
	err   error
	calls int
}

func (f *fakeResolver) GetUser(_ context.Context, token string) (*identity.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func unsignedJWT(t *testing.T, claims map[string]any) string {
	t.Helper()
	enc := func(v any) string {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		return base64.RawURLEncoding.EncodeToString(b)
	}
	return enc(map[string]string{"alg": "none", "typ": "JWT"}) + "." + enc(claims) + "."
}

func TestSessionPromotionLiftsCookies(t *testing.T) {
	var gotAuth, gotRefresh string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRefresh = r.Header.Get("x-refresh-token")
	}), WithSessionPromotion())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: helpers.AccessCookieName, Value: "at-1"})
	req.AddCookie(&http.Cookie{Name: helpers.RefreshCookieName, Value: "rt-1"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, "Bearer at-1", gotAuth)
	require.Equal(t, "rt-1", gotRefresh)
}

func TestSessionPromotionKeepsExplicitHeader(t *testing.T) {
	var gotAuth string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}), WithSessionPromotion())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer explicit")
	req.AddCookie(&http.Cookie{Name: helpers.AccessCookieName, Value: "from-cookie"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, "Bearer explicit", gotAuth)
}

func TestSessionPromotionNoCookiesNoRejection(t *testing.T) {
	var called bool
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		require.Empty(t, r.Header.Get("Authorization"))
	}), WithSessionPromotion())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, called)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGuestResolvesUser(t *testing.T) {
	resolver := &fakeResolver{user: &identity.User{ID: "u1"}}
	var got *identity.User
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = UserFrom(r.Context())
	}), WithGuest(resolver))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: helpers.AccessCookieName, Value: "opaque-token"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	require.Equal(t, "u1", got.ID)
}

func TestGuestSwallowsResolverFailure(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("provider down")}
	var called bool
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		require.Nil(t, UserFrom(r.Context()))
	}), WithGuest(resolver))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: helpers.AccessCookieName, Value: "opaque-token"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.True(t, called)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGuestSkipsExpiredToken(t *testing.T) {
	resolver := &fakeResolver{user: &identity.User{ID: "u1"}}
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), WithGuest(resolver))

	expired := unsignedJWT(t, map[string]any{"exp": time.Now().Add(-time.Hour).Unix()})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: helpers.AccessCookieName, Value: expired})
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Zero(t, resolver.calls)
}

func TestGuestMemoizesResolution(t *testing.T) {
	resolver := &fakeResolver{user: &identity.User{ID: "u1"}}
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), WithGuest(resolver))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: helpers.AccessCookieName, Value: "same-token"})
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	require.Equal(t, 1, resolver.calls)
}

func TestRequireUserRejectsAnonymous(t *testing.T) {
	resolver := &fakeResolver{user: &identity.User{ID: "u1"}}
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}), RequireUser(resolver))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireUserRejectsInvalidToken(t *testing.T) {
	resolver := &fakeResolver{err: identity.ErrInvalidToken}
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}), RequireUser(resolver))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireUserAttachesUser(t *testing.T) {
	resolver := &fakeResolver{user: &identity.User{ID: "u1", Email: "a@b.co"}}
	var got *identity.User
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = UserFrom(r.Context())
	}), RequireUser(resolver))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: helpers.AccessCookieName, Value: "opaque"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	require.Equal(t, "u1", got.ID)
}
