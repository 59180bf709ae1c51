// Package secrets hashes and checks account passwords.
package secrets

import (
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	dErrors "bloodbank/pkg/domain-errors"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// CheckPasswordStrength returns the first policy violation for a password:
// at least eight characters with an upper-case letter, a lower-case letter
// and a digit.
func CheckPasswordStrength(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	switch {
	case !upper:
		return dErrors.New(dErrors.CodeValidation, "password must contain an uppercase letter")
	case !lower:
		return dErrors.New(dErrors.CodeValidation, "password must contain a lowercase letter")
	case !digit:
		return dErrors.New(dErrors.CodeValidation, "password must contain a digit")
	}
	return nil
}

// Hash creates a bcrypt hash of the provided password.
func Hash(secret string) (string, error) {
	if secret == "" {
		return "", dErrors.New(dErrors.CodeValidation, "password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "password is too long")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not hash password")
	}
	return string(hashed), nil
}

// Verify checks if a plaintext password matches a bcrypt hash.
func Verify(secret, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not verify password")
	}
	return nil
}
