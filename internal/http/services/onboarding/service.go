// Package onboarding finalizes a profile: username, gender, password and an
// optional avatar, in one transactional-looking request against three
// collaborators that have no shared transaction.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sgarciam/vibra/internal/identity"
	"github.com/sgarciam/vibra/internal/observability/logger"
	"github.com/sgarciam/vibra/internal/store"
	"github.com/sgarciam/vibra/internal/validation"
)

var (
	ErrUsernameTooShort = errors.New("onboarding: username must be at least 3 characters")
	ErrPasswordTooShort = errors.New("onboarding: password must be at least 8 characters")
	ErrUsernameTaken    = errors.New("onboarding: username already taken")
	ErrUnsupportedMime  = errors.New("onboarding: unsupported avatar type")
	ErrAvatarUpload     = errors.New("onboarding: avatar upload failed")
)

type Uploader interface {
	Upload(ctx context.Context, bucket, path, contentType string, r io.Reader) error
	PublicURL(bucket, path string) string
}

type AdminUpdateAPI interface {
	AdminUpdateUser(ctx context.Context, userID string, p identity.AdminUpdateUserParams) (*identity.User, error)
}

type PasswordSignIn interface {
	SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error)
}

// Input is the finalization request for one authenticated user.
type Input struct {
	Username string
	Gender   string
	Password string
	Avatar   *Avatar
}

// Avatar is an uploaded image file, streamed straight to storage.
type Avatar struct {
	Name     string
	Size     int64
	MimeType string
	Reader   io.Reader
}

// Result carries what the client needs afterwards. Session is nil when the
// post-onboarding re-authentication failed; the profile and password changes
// stand regardless.
type Result struct {
	AvatarURL string
	Session   *identity.Session
}

type Service interface {
	Finalize(ctx context.Context, user *identity.User, in Input) (Result, error)
}

type Deps struct {
	Directory store.Directory
	Storage   Uploader
	Admin     AdminUpdateAPI
	Anon      PasswordSignIn
	Bucket    string
	// AllowedMimeTypes is the avatar image allow-list.
	AllowedMimeTypes []string
}

type service struct {
	deps Deps
}

func NewService(deps Deps) Service {
	return &service{deps: deps}
}

func (s *service) Finalize(ctx context.Context, user *identity.User, in Input) (Result, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Op("onboarding.finalize"),
		logger.UserID(user.ID),
	)

	in.Username = strings.TrimSpace(in.Username)
	in.Gender = strings.TrimSpace(strings.ToLower(in.Gender))

	if len(in.Username) < validation.UsernameMinLen {
		return Result{}, ErrUsernameTooShort
	}
	if len(in.Password) < validation.PasswordMinLen {
		return Result{}, ErrPasswordTooShort
	}

	// Advisory pre-check. The unique constraint during the update below is
	// the source of truth; this just fails fast for the common case.
	if holderID, err := s.deps.Directory.ProfileIDByUsername(ctx, in.Username); err == nil && holderID != user.ID {
		return Result{}, ErrUsernameTaken
	}

	var avatarURL string
	if in.Avatar != nil {
		url, err := s.storeAvatar(ctx, user.ID, in.Avatar)
		if err != nil {
			return Result{}, err
		}
		avatarURL = url
	}

	update := store.ProfileUpdate{
		Username:  in.Username,
		Gender:    in.Gender,
		UpdatedAt: time.Now().UTC(),
	}
	if avatarURL != "" {
		update.AvatarURL = &avatarURL
	}
	if err := s.deps.Directory.UpdateProfile(ctx, user.ID, update); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			// lost a race with a concurrent onboarding
			return Result{}, ErrUsernameTaken
		}
		return Result{}, err
	}

	// Re-asserting the email keeps the email identity linked on accounts
	// born through OAuth, which have no local password identity yet.
	if _, err := s.deps.Admin.AdminUpdateUser(ctx, user.ID, identity.AdminUpdateUserParams{
		Email:        user.Email,
		Password:     in.Password,
		EmailConfirm: true,
	}); err != nil {
		return Result{}, err
	}

	// The password change killed the caller's session. Mint a fresh one;
	// if that fails the operation still succeeded, the client just has to
	// log in again.
	session, err := s.deps.Anon.SignInWithPassword(ctx, user.Email, in.Password)
	if err != nil {
		log.Warn("re-authentication after password set failed", logger.Err(err))
		session = nil
	}

	return Result{AvatarURL: avatarURL, Session: session}, nil
}

func (s *service) storeAvatar(ctx context.Context, userID string, av *Avatar) (string, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("onboarding.avatar"))

	if !s.mimeAllowed(av.MimeType) {
		return "", ErrUnsupportedMime
	}

	fileName := fmt.Sprintf("%d_%s%s", time.Now().UnixMilli(), uuid.NewString(), path.Ext(av.Name))
	objectPath := userID + "/" + fileName

	if err := s.deps.Storage.Upload(ctx, s.deps.Bucket, objectPath, av.MimeType, av.Reader); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAvatarUpload, err)
	}

	// The media record is bookkeeping; losing it must not undo a finished
	// upload or block the profile update.
	if err := s.deps.Directory.InsertMedia(ctx, store.Media{
		ID:       uuid.NewString(),
		UserID:   userID,
		Bucket:   s.deps.Bucket,
		Path:     objectPath,
		Name:     fileName,
		Size:     av.Size,
		MimeType: av.MimeType,
		Public:   true,
	}); err != nil {
		log.Warn("media record insert failed", logger.Bucket(s.deps.Bucket), logger.Err(err))
	}

	return s.deps.Storage.PublicURL(s.deps.Bucket, objectPath), nil
}

func (s *service) mimeAllowed(mime string) bool {
	for _, m := range s.deps.AllowedMimeTypes {
		if strings.EqualFold(m, mime) {
			return true
		}
	}
	return false
}
