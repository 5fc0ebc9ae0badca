package repository

import (
	"context"
	"time"

	"codbank/internal/auth/domain/model"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService defines the interface for token operations
type TokenService interface {
	GenerateToken(ctx context.Context, identity model.Identity) (string, *Claims, error)
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// RevocationStore remembers token IDs that were logged out before they expired.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Claims represents JWT claims. The subject carries the username.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Username returns the subject claim.
func (c *Claims) Username() string {
	return c.Subject
}

// Identity returns the identity the token was minted for.
func (c *Claims) Identity() model.Identity {
	return model.Identity{UserID: c.UserID, Username: c.Subject, Role: c.Role}
}

// Expiry returns the expiration claim, or the zero time when it is absent.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
