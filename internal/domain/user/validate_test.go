package user

import (
	"strings"
	"testing"

	"github.com/yungbote/accessly-backend/internal/platform/apierr"
)

func TestStrongPassword(t *testing.T) {
	cases := []struct {
		pw   string
		want bool
	}{
		{"abc", false},
		{"abcdefgh", false},
		{"Abcdefg1", false},
		{"Abcdef1!", true},
		{"P@ssw0rd-long", true},
		{"ALLUPPER1!", false},
		{"Aa1!" + strings.Repeat("x", 68), true},
		{"Aa1!" + strings.Repeat("x", 69), false},
		{"Aa1!" + strings.Repeat("x", 80), false},
	}
	for _, tc := range cases {
		if got := StrongPassword(tc.pw); got != tc.want {
			t.Fatalf("StrongPassword(%q): got=%v want=%v", tc.pw, got, tc.want)
		}
	}
}

func TestValidEmail(t *testing.T) {
	cases := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"first.last@sub.example.org", true},
		{"no-at-sign", false},
		{"user@localhost", false},
		{"Name <user@example.com>", false},
		{"user @example.com", false},
		{" user@example.com", false},
		{"user@example", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidEmail(tc.email); got != tc.want {
			t.Fatalf("ValidEmail(%q): got=%v want=%v", tc.email, got, tc.want)
		}
	}
}

func TestValidateRegistration(t *testing.T) {
	cases := []struct {
		name    string
		first   string
		last    string
		email   string
		pw      string
		wantErr bool
	}{
		{"ok", "Alice", "", "alice@example.com", "Str0ng!pw", false},
		{"ok_with_last", "Alice", "Li", "alice@example.com", "Str0ng!pw", false},
		{"missing_first", "", "", "alice@example.com", "Str0ng!pw", true},
		{"missing_password", "Alice", "", "alice@example.com", "", true},
		{"weak_password", "Alice", "", "alice@example.com", "abc", true},
		{"bad_email", "Alice", "", "alice", "Str0ng!pw", true},
		{"short_first", "Al", "", "alice@example.com", "Str0ng!pw", true},
		{"short_last", "Alice", "L", "alice@example.com", "Str0ng!pw", true},
		{"password_over_72_bytes", "Alice", "", "alice@example.com", "Aa1!" + strings.Repeat("x", 80), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRegistration(tc.first, tc.last, tc.email, tc.pw)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tc.wantErr)
			}
			if err != nil && !apierr.Is(err, apierr.CodeValidation) {
				t.Fatalf("expected validation code, got %q", apierr.CodeOf(err))
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Alice@Example.COM "); got != "alice@example.com" {
		t.Fatalf("NormalizeEmail: got=%q", got)
	}
}
