package model

import (
	"errors"
	"time"
)

// AccountType names the products a customer can open.
type AccountType string

const (
	AccountSavings    AccountType = "Savings"
	AccountChecking   AccountType = "Checking"
	AccountInvestment AccountType = "Investment"
)

const (
	AccountStatusActive = "ACTIVE"
	AccountNumberDigits = 10
)

var (
	ErrInvalidAccountType = errors.New("account type must be Savings, Checking or Investment")
	ErrDepositTooSmall    = errors.New("initial deposit is below the minimum")
	ErrNotConfirmed       = errors.New("account opening must be confirmed")
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountSavings, AccountChecking, AccountInvestment:
		return true
	}
	return false
}

// Account is the codusers/{uid}/accounts/{accountId} document.
type Account struct {
	ID            string      `json:"id" bson:"id"`
	AccountNumber string      `json:"accountNumber" bson:"accountNumber"`
	AccountType   AccountType `json:"accountType" bson:"accountType"`
	Balance       float64     `json:"balance" bson:"balance"`
	Status        string      `json:"status" bson:"status"`
	CreatedAt     time.Time   `json:"createdAt" bson:"createdAt"`
}

// OpenAccountRequest is the account opening form.
type OpenAccountRequest struct {
	AccountType    AccountType `json:"accountType"`
	InitialDeposit float64     `json:"initialDeposit"`
	Confirmed      bool        `json:"confirmed"`
}

// Validate checks the form against the minimum opening deposit.
func (r OpenAccountRequest) Validate(minDeposit float64) error {
	if !r.AccountType.Valid() {
		return ErrInvalidAccountType
	}
	if r.InitialDeposit < minDeposit {
		return ErrDepositTooSmall
	}
	if !r.Confirmed {
		return ErrNotConfirmed
	}
	return nil
}
