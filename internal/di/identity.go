package di

import (
	"context"

	"codbank/internal/identity"
	"codbank/internal/identity/local"
	"codbank/internal/identity/oidc"
	"codbank/internal/shared/logger"

	"go.mongodb.org/mongo-driver/mongo"
)

// NewIdentityProvider builds the provider selected by cfg.Kind. db backs the local provider.
func NewIdentityProvider(ctx context.Context, cfg *identity.Config, db *mongo.Database, log logger.Logger) (identity.Provider, error) {
	switch cfg.Kind {
	case identity.KindLocal:
		store, err := local.NewMongoCredentialStore(ctx, db, cfg.CredentialsCollection)
		if err != nil {
			return nil, err
		}
		return local.NewProvider(store, cfg.BcryptCost, log), nil
	case identity.KindOIDC:
		return oidc.NewProvider(ctx, cfg, log)
	}
	return nil, identity.ErrUnknownProvider
}
