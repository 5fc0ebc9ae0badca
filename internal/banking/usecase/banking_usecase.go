// Package usecase implements the banking operations on top of the identity provider
// and the document store.
package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	authmodel "codbank/internal/auth/domain/model"
	"codbank/internal/banking/config"
	"codbank/internal/banking/domain/model"
	"codbank/internal/docstore"
	"codbank/internal/identity"
	"codbank/internal/shared/eventbus"
	"codbank/internal/shared/logger"

	"github.com/google/uuid"
)

const eventSource = "banking"

// BankingUsecaseInterface is what the HTTP adapters depend on.
type BankingUsecaseInterface interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.Profile, error)
	Login(ctx context.Context, email, password string) (*authmodel.Identity, error)
	GetBalance(ctx context.Context, userID string) (*model.BalanceView, error)
	ListAccounts(ctx context.Context, userID string) ([]model.Account, error)
	OpenAccount(ctx context.Context, userID string, req model.OpenAccountRequest) (*model.Account, error)
	Deposit(ctx context.Context, userID string, amount float64) (float64, error)
	Withdraw(ctx context.Context, userID string, amount float64) (float64, error)
	Rates() []model.Currency
	Convert(amount float64, from, to string) (*model.Conversion, error)
}

// BankingUsecase implements BankingUsecaseInterface.
type BankingUsecase struct {
	identity identity.Provider
	store    docstore.Store
	events   eventbus.EventBusInterface
	config   *config.Config
	now      func() time.Time
	logger   logger.Logger
}

var _ BankingUsecaseInterface = (*BankingUsecase)(nil)

// NewBankingUsecase wires the banking use cases. events may be nil.
func NewBankingUsecase(
	provider identity.Provider,
	store docstore.Store,
	events eventbus.EventBusInterface,
	cfg *config.Config,
	log logger.Logger,
) *BankingUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return &BankingUsecase{
		identity: provider,
		store:    store,
		events:   events,
		config:   cfg,
		now:      time.Now,
		logger:   log.WithComponent("banking_usecase"),
	}
}

// WithClock replaces the clock used for timestamps.
func (uc *BankingUsecase) WithClock(now func() time.Time) *BankingUsecase {
	uc.now = now
	return uc
}

func (uc *BankingUsecase) profilePath(userID string) string {
	return docstore.JoinPath(uc.config.UsersCollection, userID)
}

func (uc *BankingUsecase) accountsPath(userID string) string {
	return docstore.JoinPath(uc.config.UsersCollection, userID, "accounts")
}

// Register creates the credential and the profile document, then signs the new user
// out again. No session is created.
func (uc *BankingUsecase) Register(ctx context.Context, req model.RegisterRequest) (*model.Profile, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}
	email := identity.NormalizeEmail(req.Email)
	if err := identity.ValidateSignUp(email, req.Password); err != nil {
		return nil, err
	}

	handle, err := uc.identity.SignUp(ctx, email, req.Password)
	if err != nil {
		return nil, err
	}

	profile := &model.Profile{
		ID:          handle.UID,
		UserID:      handle.UID,
		Username:    req.Username,
		Email:       handle.Email,
		Phone:       req.Phone,
		Role:        model.RoleCustomer,
		Balance:     uc.config.WelcomeBalance,
		DisplayName: req.DisplayName(),
		CreatedAt:   uc.now().UTC(),
	}

	// The new user owns the profile it is about to write.
	ownerCtx := ownerContext(ctx, handle.UID, model.RoleCustomer)
	if err := uc.store.SetDocument(ownerCtx, uc.profilePath(handle.UID), profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	if err := uc.identity.SignOut(ctx, handle.UID); err != nil {
		uc.logger.WithContext(ctx).Warnf("Sign out after registration failed for %s: %v", handle.UID, err)
	}

	uc.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"user_id":  handle.UID,
		"username": profile.Username,
	}).Info("Profile created")

	uc.publish(ctx, eventbus.EventTypeProfileCreated, map[string]interface{}{
		"userId":   profile.UserID,
		"username": profile.Username,
	})
	return profile, nil
}

// Login checks credentials and returns the identity to mint a session for. A missing
// profile falls back to the CUSTOMER role and the local part of the email.
func (uc *BankingUsecase) Login(ctx context.Context, email, password string) (*authmodel.Identity, error) {
	email = identity.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, identity.ErrInvalidCredentials
	}

	handle, err := uc.identity.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	id := &authmodel.Identity{
		UserID:   handle.UID,
		Username: localPart(handle.Email),
		Role:     authmodel.RoleCustomer,
	}

	var profile model.Profile
	err = uc.store.GetDocument(ownerContext(ctx, handle.UID, ""), uc.profilePath(handle.UID), &profile)
	switch {
	case err == nil:
		if profile.Username != "" {
			id.Username = profile.Username
		}
		if authmodel.IsValidRole(profile.Role) {
			id.Role = profile.Role
		}
	case errors.Is(err, docstore.ErrDocumentNotFound):
		uc.logger.WithContext(ctx).Warnf("No profile for authenticated user %s, using defaults", handle.UID)
	default:
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	return id, nil
}

// GetBalance reads the caller's profile. ErrProfileNotFound means the identity exists
// without a profile document.
func (uc *BankingUsecase) GetBalance(ctx context.Context, userID string) (*model.BalanceView, error) {
	var profile model.Profile
	if err := uc.store.GetDocument(ctx, uc.profilePath(userID), &profile); err != nil {
		if errors.Is(err, docstore.ErrDocumentNotFound) {
			return nil, model.ErrProfileNotFound
		}
		return nil, err
	}
	return &model.BalanceView{
		Balance:  profile.Balance,
		Username: profile.Username,
		LastSync: uc.now().UTC(),
	}, nil
}

func (uc *BankingUsecase) ListAccounts(ctx context.Context, userID string) ([]model.Account, error) {
	accounts := []model.Account{}
	if err := uc.store.ListDocuments(ctx, uc.accountsPath(userID), &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// OpenAccount creates an ACTIVE account with a random 10-digit number.
func (uc *BankingUsecase) OpenAccount(ctx context.Context, userID string, req model.OpenAccountRequest) (*model.Account, error) {
	if err := req.Validate(uc.config.MinOpeningDeposit); err != nil {
		return nil, err
	}
	number, err := accountNumber()
	if err != nil {
		return nil, fmt.Errorf("failed to generate account number: %w", err)
	}

	account := &model.Account{
		ID:            uuid.NewString(),
		AccountNumber: number,
		AccountType:   req.AccountType,
		Balance:       req.InitialDeposit,
		Status:        model.AccountStatusActive,
		CreatedAt:     uc.now().UTC(),
	}
	path := docstore.JoinPath(uc.accountsPath(userID), account.ID)
	if err := uc.store.SetDocument(ctx, path, account); err != nil {
		return nil, err
	}

	uc.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"user_id":      userID,
		"account_id":   account.ID,
		"account_type": string(account.AccountType),
	}).Info("Account opened")

	uc.publish(ctx, eventbus.EventTypeAccountOpened, map[string]interface{}{
		"userId":  userID,
		"account": account,
	})
	return account, nil
}

func (uc *BankingUsecase) Deposit(ctx context.Context, userID string, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, model.ErrInvalidAmount
	}
	return uc.adjustBalance(ctx, userID, amount)
}

// Withdraw fails with ErrInsufficientFunds instead of taking the balance below zero.
func (uc *BankingUsecase) Withdraw(ctx context.Context, userID string, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, model.ErrInvalidAmount
	}
	return uc.adjustBalance(ctx, userID, -amount)
}

func (uc *BankingUsecase) adjustBalance(ctx context.Context, userID string, delta float64) (float64, error) {
	balance, err := uc.store.IncrementField(ctx, uc.profilePath(userID), "balance", delta, 0)
	if err != nil {
		switch {
		case errors.Is(err, docstore.ErrBelowFloor):
			return 0, model.ErrInsufficientFunds
		case errors.Is(err, docstore.ErrDocumentNotFound):
			return 0, model.ErrProfileNotFound
		}
		return 0, err
	}

	uc.publish(ctx, eventbus.EventTypeBalanceChanged, map[string]interface{}{
		"userId":  userID,
		"delta":   delta,
		"balance": balance,
	})
	return balance, nil
}

func (uc *BankingUsecase) Rates() []model.Currency {
	return model.Currencies()
}

func (uc *BankingUsecase) Convert(amount float64, from, to string) (*model.Conversion, error) {
	return model.Convert(amount, from, to)
}

func (uc *BankingUsecase) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if uc.events == nil {
		return
	}
	event := eventbus.NewBasicEventWithSource(eventType, data, eventSource)
	if err := uc.events.Publish(ctx, event); err != nil {
		uc.logger.WithContext(ctx).Warnf("Failed to publish %s: %v", eventType, err)
	}
}

func localPart(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

var accountNumberRange = big.NewInt(9_000_000_000)

// accountNumber returns a number in [1000000000, 9999999999].
func accountNumber() (string, error) {
	n, err := rand.Int(rand.Reader, accountNumberRange)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%010d", n.Int64()+1_000_000_000), nil
}
