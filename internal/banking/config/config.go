package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v6"
)

// Config holds the banking module settings.
type Config struct {
	// Collection holding one profile document per user.
	UsersCollection string `env:"USERS_COLLECTION" envDefault:"codusers"`

	// Balance credited to every new profile.
	WelcomeBalance float64 `env:"WELCOME_BALANCE" envDefault:"100000"`
	// Smallest deposit that opens an account.
	MinOpeningDeposit float64 `env:"MIN_OPENING_DEPOSIT" envDefault:"1000"`

	// Redis stream receiving every domain event.
	EventStream       string `env:"EVENT_STREAM" envDefault:"codbank:events"`
	EventStreamMaxLen int64  `env:"EVENT_STREAM_MAXLEN" envDefault:"10000"`
}

// LoadConfig loads banking configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load banking configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.UsersCollection == "" {
		return errors.New("USERS_COLLECTION cannot be empty")
	}
	if c.WelcomeBalance < 0 {
		return errors.New("WELCOME_BALANCE cannot be negative")
	}
	if c.MinOpeningDeposit <= 0 {
		return errors.New("MIN_OPENING_DEPOSIT must be positive")
	}
	if c.EventStream == "" {
		return errors.New("EVENT_STREAM cannot be empty")
	}
	if c.EventStreamMaxLen < 0 {
		return errors.New("EVENT_STREAM_MAXLEN cannot be negative")
	}
	return nil
}

// Default returns the configuration used when no environment is set.
func Default() *Config {
	return &Config{
		UsersCollection:   "codusers",
		WelcomeBalance:    100000,
		MinOpeningDeposit: 1000,
		EventStream:       "codbank:events",
		EventStreamMaxLen: 10000,
	}
}
