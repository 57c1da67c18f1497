package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sgarciam/vibra/internal/identity"
	"github.com/sgarciam/vibra/internal/store"
)

type fakeSignIn struct {
	email    string
	password string
	session  *identity.Session
	err      error
	calls    int
}

func (f *fakeSignIn) SignInWithPassword(_ context.Context, email, password string) (*identity.Session, error) {
	f.calls++
	f.email = email
	f.password = password
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

type fakeAdminLookup struct {
	users map[string]*identity.User
	err   error
}

func (f *fakeAdminLookup) AdminGetUser(_ context.Context, userID string) (*identity.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	return nil, identity.ErrUserNotFound
}

func loginFixture() (*fakeSignIn, *fakeAdminLookup, *store.Memory, LoginService) {
	signIn := &fakeSignIn{session: &identity.Session{AccessToken: "at", RefreshToken: "rt"}}
	admin := &fakeAdminLookup{users: map[string]*identity.User{
		"u1": {ID: "u1", Email: "alice@example.com"},
	}}
	dir := store.NewMemory()
	dir.Seed(store.Profile{ID: "u1", Username: "alice_99"})
	svc := NewLoginService(LoginDeps{Anon: signIn, Admin: admin, Directory: dir})
	return signIn, admin, dir, svc
}

func TestLoginWithEmailPassesThrough(t *testing.T) {
	signIn, _, _, svc := loginFixture()

	session, err := svc.Login(context.Background(), "  bob@example.com ", "secret123")
	require.NoError(t, err)
	require.NotNil(t, session)
	require.Equal(t, "bob@example.com", signIn.email)
}

func TestLoginResolvesUsernameToEmail(t *testing.T) {
	signIn, _, _, svc := loginFixture()

	_, err := svc.Login(context.Background(), "alice_99", "secret123")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", signIn.email)
}

func TestLoginUnknownUsernameIsGeneric(t *testing.T) {
	signIn, _, _, svc := loginFixture()

	_, err := svc.Login(context.Background(), "nobody", "secret123")
	require.ErrorIs(t, err, ErrInvalidLogin)
	require.Zero(t, signIn.calls, "must not reach the provider")
}

func TestLoginWrongPasswordMatchesUnknownUsername(t *testing.T) {
	// enumeration resistance: wrong password for a real account and an
	// unknown username must be the same error value
	signIn, _, _, svc := loginFixture()
	signIn.err = identity.ErrInvalidCredentials

	_, wrongPw := svc.Login(context.Background(), "alice@example.com", "bad")
	_, unknown := svc.Login(context.Background(), "ghost_user", "bad")
	require.ErrorIs(t, wrongPw, ErrInvalidLogin)
	require.ErrorIs(t, unknown, ErrInvalidLogin)
	require.Equal(t, wrongPw, unknown)
}

func TestLoginAdminLookupFailureIsGeneric(t *testing.T) {
	_, admin, _, svc := loginFixture()
	admin.err = identity.ErrUserNotFound

	_, err := svc.Login(context.Background(), "alice_99", "secret123")
	require.ErrorIs(t, err, ErrInvalidLogin)
}

func TestLoginProviderOutagePropagates(t *testing.T) {
	signIn, _, _, svc := loginFixture()
	signIn.err = context.DeadlineExceeded

	_, err := svc.Login(context.Background(), "alice@example.com", "secret123")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidLogin)
}
