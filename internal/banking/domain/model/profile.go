// Package model holds the banking documents and the values derived from them.
package model

import (
	"errors"
	"strings"
	"time"
)

const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

var (
	ErrUsernameRequired  = errors.New("username is required")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrProfileNotFound   = errors.New("identity not found")
)

// Profile is the codusers/{uid} document.
type Profile struct {
	ID          string    `json:"id" bson:"id"`
	UserID      string    `json:"userId" bson:"userId"`
	Username    string    `json:"username" bson:"username"`
	Email       string    `json:"email" bson:"email"`
	Phone       string    `json:"phone" bson:"phone"`
	Role        string    `json:"role" bson:"role"`
	Balance     float64   `json:"balance" bson:"balance"`
	DisplayName string    `json:"displayName" bson:"displayName"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// RegisterRequest is the sign-up form.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

// Normalize trims the free-text fields and checks the username.
func (r *RegisterRequest) Normalize() error {
	r.Email = strings.TrimSpace(r.Email)
	r.Username = strings.TrimSpace(r.Username)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Phone = strings.TrimSpace(r.Phone)
	if r.Username == "" {
		return ErrUsernameRequired
	}
	return nil
}

// DisplayName joins first and last name, dropping whichever is missing.
func (r RegisterRequest) DisplayName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// BalanceView is the dashboard balance response.
type BalanceView struct {
	Balance  float64   `json:"balance"`
	Username string    `json:"username"`
	LastSync time.Time `json:"-"`
}

// LastSyncString formats LastSync as RFC 3339 UTC with milliseconds.
func (v BalanceView) LastSyncString() string {
	return v.LastSync.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// BalanceChange is the payload of a balance.changed event.
type BalanceChange struct {
	UserID  string  `json:"userId"`
	Delta   float64 `json:"delta"`
	Balance float64 `json:"balance"`
}
