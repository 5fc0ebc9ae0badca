package local

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codbank/internal/identity"
	"codbank/internal/shared/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrCredentialNotFound is returned by a CredentialStore when no record matches.
var ErrCredentialNotFound = errors.New("credential not found")

// Credential is the stored login of one user.
type Credential struct {
	UID          string    `bson:"uid"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

// CredentialStore persists credentials. Insert returns identity.ErrEmailInUse on a duplicate email.
type CredentialStore interface {
	Insert(ctx context.Context, cred *Credential) error
	FindByEmail(ctx context.Context, email string) (*Credential, error)
}

// Provider checks passwords against bcrypt hashes kept in a CredentialStore.
type Provider struct {
	store  CredentialStore
	cost   int
	logger logger.Logger
}

// NewProvider creates a local identity provider.
func NewProvider(store CredentialStore, cost int, log logger.Logger) *Provider {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Provider{
		store:  store,
		cost:   cost,
		logger: log.WithComponent("identity_local"),
	}
}

// SignUp creates a credential and returns the new user handle.
func (p *Provider) SignUp(ctx context.Context, email, password string) (*identity.UserHandle, error) {
	email = identity.NormalizeEmail(email)
	if err := identity.ValidateSignUp(email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	cred := &Credential{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := p.store.Insert(ctx, cred); err != nil {
		return nil, err
	}

	p.logger.WithFields(map[string]interface{}{"uid": cred.UID}).Info("Credential created")
	return &identity.UserHandle{UID: cred.UID, Email: cred.Email}, nil
}

// SignIn verifies email and password. Unknown email and wrong password look the same.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*identity.UserHandle, error) {
	email = identity.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, identity.ErrInvalidCredentials
	}

	cred, err := p.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			return nil, identity.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, identity.ErrInvalidCredentials
	}
	return &identity.UserHandle{UID: cred.UID, Email: cred.Email}, nil
}

// SignOut has nothing to invalidate; sessions are owned by the session module.
func (p *Provider) SignOut(ctx context.Context, uid string) error {
	p.logger.WithContext(ctx).Debugf("Signed out %s", uid)
	return nil
}
