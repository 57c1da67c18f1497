package validation

import (
	"errors"
	"regexp"
	"strings"
)

// Signup rules. Onboarding reuses only the length checks; the character-class
// password rules apply to fresh registrations.

const (
	UsernameMinLen = 3
	UsernameMaxLen = 30
	PasswordMinLen = 8
	FullNameMaxLen = 100
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

var (
	ErrEmailInvalid     = errors.New("please provide a valid email address")
	ErrUsernameLength   = errors.New("username must be 3-30 characters")
	ErrUsernameCharset  = errors.New("username can only contain letters, numbers, and underscores")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordTooWeak  = errors.New("password must include lowercase, uppercase, number, and symbol")
	ErrFullNameTooLong  = errors.New("full name must be 100 characters or less")
)

// Username validates a signup username (trimmed by the caller).
func Username(username string) error {
	if len(username) < UsernameMinLen || len(username) > UsernameMaxLen {
		return ErrUsernameLength
	}
	if !usernameRe.MatchString(username) {
		return ErrUsernameCharset
	}
	return nil
}

// Password validates a signup password: minimum length plus one character of
// each class (lower, upper, digit, symbol).
func Password(password string) error {
	if len(password) < PasswordMinLen {
		return ErrPasswordTooShort
	}
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(`!@#$%^&*()_+-=[]{};':"\|,.<>/?`, r):
			symbol = true
		}
	}
	if !lower || !upper || !digit || !symbol {
		return ErrPasswordTooWeak
	}
	return nil
}

// FullName validates an optional display name.
func FullName(fullName string) error {
	if len(fullName) > FullNameMaxLen {
		return ErrFullNameTooLong
	}
	return nil
}

// Email validates email shape for signup.
func Email(email string) error {
	if !IsEmail(email) {
		return ErrEmailInvalid
	}
	return nil
}
