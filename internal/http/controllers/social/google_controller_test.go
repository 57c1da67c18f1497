package social

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sgarciam/vibra/internal/http/helpers"
	svc "github.com/sgarciam/vibra/internal/http/services/social"
)

type stubStartService struct {
	res    svc.StartResult
	err    error
	origin string
}

func (s *stubStartService) Start(_ context.Context, requestOrigin string) (svc.StartResult, error) {
	s.origin = requestOrigin
	return s.res, s.err
}

func TestGoogleSetsNonceAndRedirects(t *testing.T) {
	stub := &stubStartService{res: svc.StartResult{
		AuthURL: "https://id.example.com/authorize?provider=google",
		Nonce:   "n-123",
	}}
	ctrl := NewGoogleController(stub, helpers.SessionCookies{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google", nil)
	req.Header.Set("Origin", "https://vibra.app")
	rec := httptest.NewRecorder()
	ctrl.Google(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, stub.res.AuthURL, rec.Header().Get("Location"))
	require.Equal(t, "https://vibra.app", stub.origin)

	var state *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == helpers.StateCookieName {
			state = ck
		}
	}
	require.NotNil(t, state)
	require.Equal(t, "n-123", state.Value)
	require.True(t, state.HttpOnly)
}

func TestGoogleMisconfigurationIs500(t *testing.T) {
	ctrl := NewGoogleController(&stubStartService{err: svc.ErrNoAllowedOrigins}, helpers.SessionCookies{})
	rec := httptest.NewRecorder()
	ctrl.Google(rec, httptest.NewRequest(http.MethodGet, "/api/auth/google", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestOriginFallsBackToHost(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://localhost:3000/api/auth/google", nil)
	require.Equal(t, "http://localhost:3000", requestOrigin(req))

	req.Header.Set("X-Forwarded-Proto", "https")
	require.Equal(t, "https://localhost:3000", requestOrigin(req))

	req.Header.Set("Origin", "https://vibra.app")
	require.Equal(t, "https://vibra.app", requestOrigin(req))
}
