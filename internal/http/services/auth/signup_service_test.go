package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sgarciam/vibra/internal/identity"
	"github.com/sgarciam/vibra/internal/validation"
)

type fakeSignUp struct {
	got identity.SignUpParams
	res *identity.SignUpResult
	err error
}

func (f *fakeSignUp) SignUp(_ context.Context, p identity.SignUpParams) (*identity.SignUpResult, error) {
	f.got = p
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

func validSignup() SignupInput {
	return SignupInput{
		Email:    "new@example.com",
		Password: "Str0ng!pass",
		Username: "newbie",
		FullName: "New User",
	}
}

func TestSignupSendsMetadata(t *testing.T) {
	api := &fakeSignUp{res: &identity.SignUpResult{User: &identity.User{ID: "u9"}}}
	svc := NewSignupService(SignupDeps{Anon: api})

	res, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)
	require.Equal(t, "u9", res.User.ID)
	require.Equal(t, "newbie", api.got.Data["username"])
	require.Equal(t, "New User", api.got.Data["full_name"])
}

func TestSignupValidation(t *testing.T) {
	svc := NewSignupService(SignupDeps{Anon: &fakeSignUp{}})

	cases := []struct {
		name   string
		mut    func(*SignupInput)
		target error
	}{
		{"bad email", func(in *SignupInput) { in.Email = "not-an-email" }, validation.ErrEmailInvalid},
		{"short username", func(in *SignupInput) { in.Username = "ab" }, validation.ErrUsernameLength},
		{"username charset", func(in *SignupInput) { in.Username = "bad name!" }, validation.ErrUsernameCharset},
		{"short password", func(in *SignupInput) { in.Password = "Ab1!" }, validation.ErrPasswordTooShort},
		{"weak password", func(in *SignupInput) { in.Password = "alllowercase" }, validation.ErrPasswordTooWeak},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validSignup()
			tc.mut(&in)
			_, err := svc.Signup(context.Background(), in)
			require.ErrorIs(t, err, tc.target)
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	api := &fakeSignUp{err: identity.ErrDuplicateUser}
	svc := NewSignupService(SignupDeps{Anon: api})

	_, err := svc.Signup(context.Background(), validSignup())
	require.ErrorIs(t, err, ErrEmailInUse)
}
