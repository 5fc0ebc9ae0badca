// Package identity verifies email and password credentials and hands out the opaque
// user handle that keys every profile document.
package identity

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

const (
	MinPasswordLength = 6
	// MaxPasswordLength is the bcrypt input limit in bytes.
	MaxPasswordLength = 72
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailInUse         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrUnsupported        = errors.New("operation not supported by identity provider")
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// UserHandle is the authenticated user as the provider knows it.
type UserHandle struct {
	UID   string
	Email string
}

// Provider is the credential authority.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*UserHandle, error)
	SignUp(ctx context.Context, email, password string) (*UserHandle, error)
	SignOut(ctx context.Context, uid string) error
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateSignUp checks the address format and password length.
func ValidateSignUp(email, password string) error {
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}
