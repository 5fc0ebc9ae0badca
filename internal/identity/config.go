package identity

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v6"
)

// Provider kinds.
const (
	KindLocal = "local"
	KindOIDC  = "oidc"
)

var ErrUnknownProvider = errors.New("IDENTITY_PROVIDER must be 'local' or 'oidc'")

// Config selects and configures the identity provider.
type Config struct {
	Kind string `env:"IDENTITY_PROVIDER" envDefault:"local"`

	// Local provider
	CredentialsCollection string `env:"IDENTITY_CREDENTIALS_COLLECTION" envDefault:"credentials"`
	BcryptCost            int    `env:"IDENTITY_BCRYPT_COST" envDefault:"10"`

	// OIDC provider
	OIDCIssuer       string   `env:"OIDC_ISSUER"`
	OIDCClientID     string   `env:"OIDC_CLIENT_ID"`
	OIDCClientSecret string   `env:"OIDC_CLIENT_SECRET"`
	OIDCScopes       []string `env:"OIDC_SCOPES" envSeparator:"," envDefault:"openid,email,profile"`
}

// LoadConfig loads identity configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load identity configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected provider has what it needs.
func (c *Config) Validate() error {
	switch c.Kind {
	case KindLocal:
		if c.CredentialsCollection == "" {
			return errors.New("IDENTITY_CREDENTIALS_COLLECTION cannot be empty")
		}
	case KindOIDC:
		if c.OIDCIssuer == "" || c.OIDCClientID == "" {
			return errors.New("OIDC_ISSUER and OIDC_CLIENT_ID are required for the oidc identity provider")
		}
	default:
		return ErrUnknownProvider
	}
	return nil
}
