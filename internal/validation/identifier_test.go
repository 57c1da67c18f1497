package validation

import "testing"

func TestIsEmail_EmailShaped(t *testing.T) {
	emails := []string{
		"a@b.co",
		"alice@example.com",
		"first.last@sub.domain.org",
		"  padded@example.com  ", // trimmed before matching
		"user+tag@example.io",
	}
	for _, v := range emails {
		if !IsEmail(v) {
			t.Fatalf("expected email: %q", v)
		}
	}
}

func TestIsEmail_UsernameShaped(t *testing.T) {
	usernames := []string{
		"alice_99",
		"bob",
		"",
		"no-at-sign.com",
		"two@@example.com",
		"spaces in@example.com",
		"missing@tld",
	}
	for _, v := range usernames {
		if IsEmail(v) {
			t.Fatalf("expected non-email: %q", v)
		}
	}
}
