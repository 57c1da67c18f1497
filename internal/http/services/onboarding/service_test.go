package onboarding

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sgarciam/vibra/internal/identity"
	"github.com/sgarciam/vibra/internal/store"
)

type fakeDirectory struct {
	*store.Memory
	updateErr error
	mediaErr  error
	media     []store.Media
}

func (f *fakeDirectory) UpdateProfile(ctx context.Context, id string, up store.ProfileUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.Memory.UpdateProfile(ctx, id, up)
}

func (f *fakeDirectory) InsertMedia(ctx context.Context, rec store.Media) error {
	if f.mediaErr != nil {
		return f.mediaErr
	}
	f.media = append(f.media, rec)
	return nil
}

type fakeUploader struct {
	uploaded map[string]string // path -> content type
	err      error
}

func (f *fakeUploader) Upload(_ context.Context, bucket, path, contentType string, r io.Reader) error {
	if f.err != nil {
		return f.err
	}
	_, _ = io.Copy(io.Discard, r)
	if f.uploaded == nil {
		f.uploaded = make(map[string]string)
	}
	f.uploaded[path] = contentType
	return nil
}

func (f *fakeUploader) PublicURL(bucket, path string) string {
	return "https://cdn.example.com/" + bucket + "/" + path
}

type fakeAdmin struct {
	got identity.AdminUpdateUserParams
	err error
}

func (f *fakeAdmin) AdminUpdateUser(_ context.Context, _ string, p identity.AdminUpdateUserParams) (*identity.User, error) {
	f.got = p
	if f.err != nil {
		return nil, f.err
	}
	return &identity.User{ID: "u1"}, nil
}

type fakeSignIn struct {
	session *identity.Session
	err     error
}

func (f *fakeSignIn) SignInWithPassword(_ context.Context, _, _ string) (*identity.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

type fixture struct {
	dir    *fakeDirectory
	up     *fakeUploader
	admin  *fakeAdmin
	signIn *fakeSignIn
	svc    Service
}

func newFixture() *fixture {
	dir := &fakeDirectory{Memory: store.NewMemory()}
	dir.Seed(store.Profile{ID: "u1", Username: "user_abc123"})
	dir.Seed(store.Profile{ID: "u2", Username: "taken_name"})

	up := &fakeUploader{}
	admin := &fakeAdmin{}
	signIn := &fakeSignIn{session: &identity.Session{AccessToken: "new-at", RefreshToken: "new-rt"}}

	return &fixture{
		dir: dir, up: up, admin: admin, signIn: signIn,
		svc: NewService(Deps{
			Directory:        dir,
			Storage:          up,
			Admin:            admin,
			Anon:             signIn,
			Bucket:           "avatars",
			AllowedMimeTypes: []string{"image/jpeg", "image/png", "image/webp"},
		}),
	}
}

func caller() *identity.User {
	return &identity.User{ID: "u1", Email: "alice@example.com"}
}

func validInput() Input {
	return Input{Username: "alice", Gender: "female", Password: "longenough"}
}

func TestFinalizeHappyPath(t *testing.T) {
	f := newFixture()

	res, err := f.svc.Finalize(context.Background(), caller(), validInput())
	require.NoError(t, err)
	require.NotNil(t, res.Session)
	require.Equal(t, "new-at", res.Session.AccessToken)

	p, err := f.dir.ProfileByID(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "alice", p.Username)
	require.Equal(t, "female", p.Gender)
	require.True(t, p.Onboarded())

	require.Equal(t, "alice@example.com", f.admin.got.Email)
	require.Equal(t, "longenough", f.admin.got.Password)
	require.True(t, f.admin.got.EmailConfirm)
}

func TestFinalizeValidationBoundaries(t *testing.T) {
	f := newFixture()

	in := validInput()
	in.Username = "ab"
	_, err := f.svc.Finalize(context.Background(), caller(), in)
	require.ErrorIs(t, err, ErrUsernameTooShort)

	in = validInput()
	in.Username = "abc"
	_, err = f.svc.Finalize(context.Background(), caller(), in)
	require.NoError(t, err)

	in = validInput()
	in.Password = "1234567"
	_, err = f.svc.Finalize(context.Background(), caller(), in)
	require.ErrorIs(t, err, ErrPasswordTooShort)

	in = validInput()
	in.Password = "12345678"
	_, err = f.svc.Finalize(context.Background(), caller(), in)
	require.NoError(t, err)
}

func TestFinalizeUsernameTakenByOtherUser(t *testing.T) {
	f := newFixture()

	in := validInput()
	in.Username = "taken_name"
	_, err := f.svc.Finalize(context.Background(), caller(), in)
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestFinalizeIdempotentResubmitKeepsOwnUsername(t *testing.T) {
	f := newFixture()

	in := validInput()
	in.Username = "user_abc123" // already the caller's own username
	_, err := f.svc.Finalize(context.Background(), caller(), in)
	require.NoError(t, err)
}

func TestFinalizeUniqueViolationRaceMapsToTaken(t *testing.T) {
	f := newFixture()
	f.dir.updateErr = store.ErrUsernameTaken

	_, err := f.svc.Finalize(context.Background(), caller(), validInput())
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestFinalizeAvatarUpload(t *testing.T) {
	f := newFixture()

	in := validInput()
	in.Avatar = &Avatar{
		Name:     "me.png",
		Size:     4,
		MimeType: "image/png",
		Reader:   strings.NewReader("data"),
	}
	res, err := f.svc.Finalize(context.Background(), caller(), in)
	require.NoError(t, err)
	require.NotEmpty(t, res.AvatarURL)
	require.Len(t, f.up.uploaded, 1)
	require.Len(t, f.dir.media, 1)

	rec := f.dir.media[0]
	require.Equal(t, "u1", rec.UserID)
	require.Equal(t, "avatars", rec.Bucket)
	require.Equal(t, "image/png", rec.MimeType)
	require.True(t, rec.Public)
	require.True(t, strings.HasPrefix(rec.Path, "u1/"))
	require.True(t, strings.HasSuffix(rec.Path, ".png"))

	p, err := f.dir.ProfileByID(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, res.AvatarURL, p.AvatarURL)
}

func TestFinalizeRejectsBadMime(t *testing.T) {
	f := newFixture()

	in := validInput()
	in.Avatar = &Avatar{Name: "evil.svg", MimeType: "image/svg+xml", Reader: strings.NewReader("x")}
	_, err := f.svc.Finalize(context.Background(), caller(), in)
	require.ErrorIs(t, err, ErrUnsupportedMime)
	require.Empty(t, f.up.uploaded)
}

func TestFinalizeUploadFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.up.err = errors.New("storage is down")

	in := validInput()
	in.Avatar = &Avatar{Name: "me.jpg", MimeType: "image/jpeg", Reader: strings.NewReader("x")}
	_, err := f.svc.Finalize(context.Background(), caller(), in)
	require.ErrorIs(t, err, ErrAvatarUpload)

	// no profile mutation happened
	p, perr := f.dir.ProfileByID(context.Background(), "u1")
	require.NoError(t, perr)
	require.Equal(t, "user_abc123", p.Username)
}

func TestFinalizeMediaRecordFailureIsNonFatal(t *testing.T) {
	f := newFixture()
	f.dir.mediaErr = errors.New("insert failed")

	in := validInput()
	in.Avatar = &Avatar{Name: "me.jpg", MimeType: "image/jpeg", Reader: strings.NewReader("x")}
	res, err := f.svc.Finalize(context.Background(), caller(), in)
	require.NoError(t, err)
	require.NotEmpty(t, res.AvatarURL)
}

func TestFinalizeReauthFailureTolerated(t *testing.T) {
	f := newFixture()
	f.signIn.err = identity.ErrInvalidCredentials

	res, err := f.svc.Finalize(context.Background(), caller(), validInput())
	require.NoError(t, err)
	require.Nil(t, res.Session)

	// profile update still landed
	p, perr := f.dir.ProfileByID(context.Background(), "u1")
	require.NoError(t, perr)
	require.Equal(t, "alice", p.Username)
	require.WithinDuration(t, time.Now(), p.UpdatedAt, time.Minute)
}

func TestFinalizeAdminFailureAborts(t *testing.T) {
	f := newFixture()
	f.admin.err = errors.New("admin api down")

	res, err := f.svc.Finalize(context.Background(), caller(), validInput())
	require.Error(t, err)
	require.Nil(t, res.Session)
}
