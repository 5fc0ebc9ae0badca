package config

import (
	"errors"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// DevelopmentSecret signs sessions when JWT_SECRET is unset in a local environment.
// LoadConfig refuses to fall back to it anywhere else.
const DevelopmentSecret = "codbank-ultra-secure-system-key-2024"

var (
	ErrSecretRequired  = errors.New("JWT_SECRET is required outside local development")
	ErrInvalidTTL      = errors.New("SESSION_TTL must be positive")
	ErrInvalidSameSite = errors.New("SESSION_COOKIE_SAME_SITE must be one of 'Lax', 'Strict', or 'None'")
)

// Config holds all configuration for the session module.
type Config struct {
	Environment string `env:"APP_ENV" envDefault:"development"`

	// Token signing
	JWTSecretKey string        `env:"JWT_SECRET"`
	JWTIssuer    string        `env:"JWT_ISSUER" envDefault:"codbank"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"2h"`

	// Cookie transport
	CookieName     string `env:"SESSION_COOKIE_NAME" envDefault:"cod_session"`
	CookiePath     string `env:"SESSION_COOKIE_PATH" envDefault:"/"`
	CookieDomain   string `env:"SESSION_COOKIE_DOMAIN" envDefault:""`
	CookieSameSite string `env:"SESSION_COOKIE_SAME_SITE" envDefault:"Lax"`

	// Requests per minute per client on the session endpoints.
	SessionRateLimit int `env:"SESSION_RATE_LIMIT" envDefault:"20"`

	// Redis key prefix for revoked token ids.
	RevocationPrefix string `env:"SESSION_REVOCATION_PREFIX" envDefault:"codbank:revoked:"`
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load session configuration from environment: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate normalizes the config and applies the development secret fallback.
func (c *Config) Validate() error {
	if c.JWTSecretKey == "" {
		if !c.IsLocal() {
			return ErrSecretRequired
		}
		c.JWTSecretKey = DevelopmentSecret
	}
	if c.SessionTTL <= 0 {
		return ErrInvalidTTL
	}

	switch strings.ToLower(c.CookieSameSite) {
	case "lax":
		c.CookieSameSite = "Lax"
	case "strict":
		c.CookieSameSite = "Strict"
	case "none":
		c.CookieSameSite = "None"
	default:
		return ErrInvalidSameSite
	}

	if c.CookieName == "" {
		c.CookieName = "cod_session"
	}
	if c.CookiePath == "" {
		c.CookiePath = "/"
	}
	if c.JWTIssuer == "" {
		c.JWTIssuer = "codbank"
	}
	return nil
}

// IsLocal reports whether the process runs in a developer environment.
func (c *Config) IsLocal() bool {
	switch strings.ToLower(c.Environment) {
	case "development", "dev", "local", "test":
		return true
	}
	return false
}

// IsProduction reports whether cookies must be marked Secure.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "production" || env == "prod"
}

// CookieMaxAge is the cookie lifetime in seconds; it always matches the token validity.
func (c *Config) CookieMaxAge() int {
	return int(c.SessionTTL / time.Second)
}
