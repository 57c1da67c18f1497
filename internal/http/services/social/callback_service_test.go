package social

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sgarciam/vibra/internal/identity"
	"github.com/sgarciam/vibra/internal/store"
)

type fakeExchange struct {
	session *identity.Session
	err     error
	calls   int
}

func (f *fakeExchange) ExchangeCode(_ context.Context, _ string) (*identity.Session, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func callbackFixture(profile *store.Profile) CallbackService {
	dir := store.NewMemory()
	if profile != nil {
		dir.Seed(*profile)
	}
	return NewCallbackService(CallbackDeps{
		Identity:  &fakeExchange{},
		Directory: dir,
		AppURL:    "https://vibra.app",
	})
}

func session() *identity.Session {
	return &identity.Session{
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
		User:         &identity.User{ID: "u1"},
	}
}

func TestDestinationHomeWhenOnboarded(t *testing.T) {
	svc := callbackFixture(&store.Profile{ID: "u1", Username: "bob", Gender: "male"})

	dest := svc.Destination(context.Background(), session())
	require.Equal(t, "https://vibra.app/#access_token=at-1&refresh_token=rt-1", dest)
}

func TestDestinationOnboardingWhenIncomplete(t *testing.T) {
	cases := []store.Profile{
		{ID: "u1", Username: "", Gender: "male"},
		{ID: "u1", Username: "   ", Gender: "female"},
		{ID: "u1", Username: "bob", Gender: ""},
		{ID: "u1", Username: "bob", Gender: "unknown"},
	}
	for _, p := range cases {
		svc := callbackFixture(&p)
		dest := svc.Destination(context.Background(), session())
		require.Equal(t, "https://vibra.app/auth?onboarding=true#access_token=at-1&refresh_token=rt-1", dest)
	}
}

func TestDestinationOnboardingWhenProfileMissing(t *testing.T) {
	svc := callbackFixture(nil)

	dest := svc.Destination(context.Background(), session())
	require.Contains(t, dest, "/auth?onboarding=true#")
}

func TestDestinationTokensAreEscaped(t *testing.T) {
	svc := callbackFixture(&store.Profile{ID: "u1", Username: "bob", Gender: "male"})
	s := session()
	s.AccessToken = "a&b=c"

	dest := svc.Destination(context.Background(), s)
	require.Contains(t, dest, "access_token=a%26b%3Dc")
}
