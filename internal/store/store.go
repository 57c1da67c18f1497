// Package store is the application-owned profile directory: user-facing
// attributes keyed 1:1 by provider user id, plus uploaded-media records.
// Username uniqueness is enforced here (the database constraint is the
// source of truth; pre-checks elsewhere are advisory).
package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrUsernameTaken = errors.New("store: username already taken")
)

// Profile mirrors one provider account. OAuth sign-ups arrive with a
// placeholder username created by a provider-side trigger; onboarding fills
// in the rest.
type Profile struct {
	ID        string
	Username  string
	Gender    string
	AvatarURL string
	UpdatedAt time.Time
}

// ProfileUpdate is the onboarding mutation. AvatarURL nil leaves the stored
// value untouched.
type ProfileUpdate struct {
	Username  string
	Gender    string
	AvatarURL *string
	UpdatedAt time.Time
}

// Media is the record kept for every uploaded object.
type Media struct {
	ID       string
	UserID   string
	Bucket   string
	Path     string
	Name     string
	Size     int64
	MimeType string
	Public   bool
}

// Onboarded is the completion predicate: a profile counts as onboarded iff it
// has a non-blank username and a recognized gender. Derived, never stored.
func (p *Profile) Onboarded() bool {
	if p == nil {
		return false
	}
	if strings.TrimSpace(p.Username) == "" {
		return false
	}
	switch p.Gender {
	case "male", "female", "other":
		return true
	}
	return false
}

// Directory is the profile directory contract.
type Directory interface {
	// ProfileByID returns the profile for a provider user id.
	ProfileByID(ctx context.Context, id string) (*Profile, error)

	// ProfileIDByUsername returns the id of the single profile holding the
	// username (exact, case-sensitive). ErrNotFound when nobody does.
	ProfileIDByUsername(ctx context.Context, username string) (string, error)

	// UpdateProfile applies the onboarding mutation. A username uniqueness
	// violation surfaces as ErrUsernameTaken.
	UpdateProfile(ctx context.Context, id string, up ProfileUpdate) error

	// InsertMedia records an uploaded object.
	InsertMedia(ctx context.Context, m Media) error
}
