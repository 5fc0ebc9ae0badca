package di

import (
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/redis/go-redis/v9"
)

// InfraConfig holds the connection settings for the shared backing services.
type InfraConfig struct {
	MongoURI     string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	DatabaseName string `env:"DATABASE_NAME" envDefault:"codbank"`

	// Without Redis, logout only clears the cookie and no audit stream is written.
	RedisEnabled      bool          `env:"REDIS_ENABLED" envDefault:"true"`
	RedisAddr         string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword     string        `env:"REDIS_PASSWORD"`
	RedisDB           int           `env:"REDIS_DB" envDefault:"0"`
	RedisTLS          bool          `env:"REDIS_TLS" envDefault:"false"`
	RedisPoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	RedisMinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	RedisMaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	RedisConnMaxIdle  time.Duration `env:"REDIS_CONN_MAX_IDLE_TIME" envDefault:"30m"`
	RedisConnMaxLife  time.Duration `env:"REDIS_CONN_MAX_LIFETIME" envDefault:"1h"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT"`
}

// LoadInfraConfig loads infrastructure configuration from environment variables.
func LoadInfraConfig() (*InfraConfig, error) {
	cfg := &InfraConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load infrastructure configuration: %w", err)
	}
	if cfg.DatabaseName == "" {
		return nil, fmt.Errorf("DATABASE_NAME cannot be empty")
	}
	return cfg, nil
}

// NewRedisClient builds the shared Redis client, or returns nil when Redis is disabled.
func NewRedisClient(cfg *InfraConfig) *redis.Client {
	if !cfg.RedisEnabled || cfg.RedisAddr == "" {
		return nil
	}

	options := &redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		MaxRetries:   cfg.RedisMaxRetries,
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,

		ConnMaxIdleTime: cfg.RedisConnMaxIdle,
		ConnMaxLifetime: cfg.RedisConnMaxLife,
	}

	if cfg.RedisTLS {
		host, _, err := net.SplitHostPort(cfg.RedisAddr)
		if err != nil {
			host = cfg.RedisAddr
		}
		options.TLSConfig = &tls.Config{ServerName: host}
	}

	return redis.NewClient(options)
}
