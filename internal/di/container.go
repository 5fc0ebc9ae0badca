package di

import (
	"context"
	"fmt"
	"sync"
	"time"

	"codbank/internal/auth"
	authconfig "codbank/internal/auth/config"
	"codbank/internal/banking"
	bankingconfig "codbank/internal/banking/config"
	"codbank/internal/docstore"
	"codbank/internal/docstore/rules"
	"codbank/internal/identity"
	"codbank/internal/shared/eventbus"
	"codbank/internal/shared/logger"
	"codbank/internal/shared/metrics"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Container owns the process-wide connections and modules and shuts them down in order.
type Container struct {
	mu sync.RWMutex

	// Module instances
	AuthModule    *auth.AuthModule
	BankingModule *banking.BankingModule

	// Connections
	MongoClient *mongo.Client
	MongoDB     *mongo.Database
	Redis       redis.UniversalClient

	// Shared services
	Identity identity.Provider
	Store    docstore.Store
	EventBus *eventbus.EventBus
	Metrics  *metrics.Metrics
	Logger   logger.Logger
}

// NewContainer creates an empty container logging through log.
func NewContainer(log logger.Logger) *Container {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Container{
		Logger:   log,
		EventBus: eventbus.NewEventBus(log.WithComponent("eventbus")),
		Metrics:  metrics.New(),
	}
}

// InitializeInfrastructure connects to MongoDB and, when enabled, Redis.
func (c *Container) InitializeInfrastructure(ctx context.Context, cfg *InfraConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		_ = mongoClient.Disconnect(context.Background())
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	c.MongoClient = mongoClient
	c.MongoDB = mongoClient.Database(cfg.DatabaseName)
	c.Logger.Info("MongoDB connection established successfully")

	if client := NewRedisClient(cfg); client != nil {
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return fmt.Errorf("failed to ping Redis: %w", err)
		}
		c.Redis = client
		c.Logger.Info("Redis connection established successfully")
	} else {
		c.Logger.Warn("Redis disabled: session revocation and audit stream are off")
	}
	return nil
}

// InitializeAuth builds the session module.
func (c *Container) InitializeAuth(cfg *authconfig.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	authModule, err := auth.NewAuthModule(cfg, c.Redis, c.EventBus, c.Metrics, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create auth module: %w", err)
	}
	c.AuthModule = authModule
	return nil
}

// InitializeBanking builds the identity provider, the rule-guarded document store and
// the banking module. The auth module must exist first.
func (c *Container) InitializeBanking(ctx context.Context, identityCfg *identity.Config, cfg *bankingconfig.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.AuthModule == nil {
		return fmt.Errorf("auth module must be initialized before banking module")
	}
	if c.MongoDB == nil {
		return fmt.Errorf("MongoDB must be initialized before banking module")
	}

	provider, err := NewIdentityProvider(ctx, identityCfg, c.MongoDB, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create identity provider: %w", err)
	}
	c.Identity = provider

	mongoStore := docstore.NewMongoStore(c.MongoDB, c.Logger)
	if err := mongoStore.EnsureIndexes(ctx, cfg.UsersCollection, "accounts"); err != nil {
		return fmt.Errorf("failed to prepare document store: %w", err)
	}
	engine, err := rules.NewEngine(rules.DefaultRules(cfg.UsersCollection, cfg.MinOpeningDeposit), c.Logger)
	if err != nil {
		return fmt.Errorf("failed to compile access rules: %w", err)
	}
	c.Store = docstore.NewGuardedStore(mongoStore, engine)

	c.BankingModule = banking.NewBankingModule(
		cfg,
		provider,
		c.Store,
		c.AuthModule.GetSessionHandler(),
		c.Redis,
		c.EventBus,
		c.Metrics,
		c.Logger,
	)
	return nil
}

// GetAuthModule returns the auth module instance
func (c *Container) GetAuthModule() *auth.AuthModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AuthModule
}

// GetBankingModule returns the banking module instance
func (c *Container) GetBankingModule() *banking.BankingModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.BankingModule
}

// HealthCheck pings every open connection.
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.MongoClient != nil {
		if err := c.MongoClient.Ping(ctx, nil); err != nil {
			return fmt.Errorf("MongoDB health check failed: %w", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("Redis health check failed: %w", err)
		}
	}
	return nil
}

// Cleanup releases connections in reverse order of initialization.
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	c.BankingModule = nil
	c.AuthModule = nil

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
		c.Redis = nil
	}
	if c.MongoClient != nil {
		if err := c.MongoClient.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to disconnect MongoDB: %w", err))
		}
		c.MongoClient = nil
		c.MongoDB = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}

// Close shuts down all services with a 30 second timeout.
func (c *Container) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Cleanup(ctx); err != nil {
		c.Logger.Warnf("Cleanup errors occurred: %v", err)
		return err
	}
	c.Logger.Info("Container resources closed")
	return nil
}
