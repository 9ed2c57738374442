package user

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/accessly-backend/internal/platform/apierr"
)

const (
	MinFirstNameLen = 3
	MinLastNameLen  = 2
	MinPasswordLen  = 8

	// bcrypt only hashes the first 72 bytes and rejects anything longer.
	MaxPasswordBytes = 72
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// NormalizeEmail trims and lowercases; stored emails are always normalized.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail accepts a bare address with a dotted domain; display names
// ("Name <a@b.c>") and surrounding whitespace are rejected.
func ValidEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// StrongPassword requires 8 characters to 72 bytes with one lowercase, one
// uppercase, one digit and one symbol.
func StrongPassword(pw string) bool {
	if len([]rune(pw)) < MinPasswordLen || len(pw) > MaxPasswordBytes {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

func ValidateRegistration(firstName, lastName, email, password string) error {
	var missing []string
	if strings.TrimSpace(firstName) == "" {
		missing = append(missing, "firstName")
	}
	if strings.TrimSpace(email) == "" {
		missing = append(missing, "emailId")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return apierr.Validation("missing required fields: %s", strings.Join(missing, ", "))
	}
	if !ValidEmail(email) {
		return apierr.Validation("invalid email")
	}
	if len(password) > MaxPasswordBytes {
		return apierr.Validation("password must be at most %d bytes", MaxPasswordBytes)
	}
	if !StrongPassword(password) {
		return apierr.Validation("weak password")
	}
	return ValidateNames(firstName, lastName)
}

func ValidateNames(firstName, lastName string) error {
	if err := ValidateFirstName(firstName); err != nil {
		return err
	}
	return ValidateLastName(lastName)
}

func ValidateFirstName(firstName string) error {
	if len([]rune(strings.TrimSpace(firstName))) < MinFirstNameLen {
		return apierr.Validation("firstName must be at least %d characters", MinFirstNameLen)
	}
	return nil
}

// ValidateLastName accepts an empty last name.
func ValidateLastName(lastName string) error {
	if ln := strings.TrimSpace(lastName); ln != "" && len([]rune(ln)) < MinLastNameLen {
		return apierr.Validation("lastName must be at least %d characters", MinLastNameLen)
	}
	return nil
}
