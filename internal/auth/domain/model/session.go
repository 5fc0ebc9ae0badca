package model

import (
	"errors"
	"strings"
	"time"
)

// Roles a session may carry.
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// ActionLogout is the only action the session endpoint understands.
const ActionLogout = "logout"

var (
	ErrMissingIdentity = errors.New("missing identity data")
	ErrInvalidRole     = errors.New("invalid role")
)

// Identity is the set of claims a session is minted for.
type Identity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// SessionRequest is the raw body of POST /api/auth/session.
type SessionRequest struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Action   string `json:"action"`
}

// SessionCommand is either a LoginRequest or a LogoutRequest.
type SessionCommand interface {
	sessionCommand()
}

// LoginRequest asks for a new session for the given identity.
type LoginRequest struct {
	Identity
}

// LogoutRequest asks for the current session to be ended.
type LogoutRequest struct{}

func (LoginRequest) sessionCommand()  {}
func (LogoutRequest) sessionCommand() {}

// Command resolves the body into a typed command. The logout action wins over any
// identity fields sent alongside it.
func (r SessionRequest) Command() (SessionCommand, error) {
	if r.Action == ActionLogout {
		return LogoutRequest{}, nil
	}

	login := LoginRequest{Identity: Identity{
		UserID:   strings.TrimSpace(r.UserID),
		Username: strings.TrimSpace(r.Username),
		Role:     strings.TrimSpace(r.Role),
	}}
	if err := login.Normalize(); err != nil {
		return nil, err
	}
	return login, nil
}

// Normalize validates the identity and fills the default role.
func (r *LoginRequest) Normalize() error {
	if r.UserID == "" || r.Username == "" {
		return ErrMissingIdentity
	}
	if r.Role == "" {
		r.Role = RoleCustomer
	}
	if !IsValidRole(r.Role) {
		return ErrInvalidRole
	}
	return nil
}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	return role == RoleCustomer || role == RoleAdmin
}

// IssuedSession is a freshly minted token and the moment it stops being valid.
type IssuedSession struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
	Identity  Identity
}
