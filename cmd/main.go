package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	authhttp "codbank/internal/auth/adapter/http"
	authconfig "codbank/internal/auth/config"
	bankingconfig "codbank/internal/banking/config"
	"codbank/internal/di"
	"codbank/internal/identity"
	"codbank/internal/shared/contextkeys"
	"codbank/internal/shared/logger"

	"github.com/caarlos0/env/v6"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Host         string `env:"SERVER_HOST" envDefault:"localhost"`
	Port         string `env:"SERVER_PORT" envDefault:"3000"`
	AllowOrigins string `env:"CORS_ALLOW_ORIGINS" envDefault:"http://localhost:3000"`

	// ProxyHeader is honoured by c.IP() only for requests from TrustedProxies.
	ProxyHeader    string   `env:"PROXY_HEADER"`
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	serverCfg := &ServerConfig{}
	if err := env.Parse(serverCfg); err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}
	infraCfg, err := di.LoadInfraConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}
	authCfg, err := authconfig.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load session configuration: %v", err)
	}
	identityCfg, err := identity.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}
	bankingCfg, err := bankingconfig.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	appLogger := logger.NewLogger()
	accessLogger, err := logger.NewAccessLogger(infraCfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build access logger: %v", err)
	}
	defer func() { _ = accessLogger.Sync() }()

	if authCfg.JWTSecretKey == authconfig.DevelopmentSecret {
		appLogger.Warn("JWT_SECRET not set, signing sessions with the development secret")
	}

	container := di.NewContainer(appLogger)
	defer func() {
		if err := container.Close(); err != nil {
			appLogger.Errorf("Failed to close container: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := container.InitializeInfrastructure(ctx, infraCfg); err != nil {
		appLogger.Fatalf("Failed to initialize infrastructure: %v", err)
	}
	if err := container.InitializeAuth(authCfg); err != nil {
		appLogger.Fatalf("Failed to initialize auth module: %v", err)
	}
	if err := container.InitializeBanking(ctx, identityCfg, bankingCfg); err != nil {
		appLogger.Fatalf("Failed to initialize banking module: %v", err)
	}
	appLogger.Info("All modules initialized")

	app := fiber.New(fiber.Config{
		AppName:      "CodBank API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,

		ProxyHeader:             serverCfg.ProxyHeader,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          serverCfg.TrustedProxies,

		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
			}
			appLogger.Errorf("HTTP Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error",
			})
		},
	})

	app.Use(recover.New())
	app.Use(authhttp.RequestID())
	app.Use(authhttp.RequestContext())
	app.Use(logger.AccessLog(accessLogger, string(contextkeys.RequestIDKey)))
	app.Use(container.Metrics.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     serverCfg.AllowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: true,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		healthCtx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()

		if err := container.HealthCheck(healthCtx); err != nil {
			appLogger.Errorf("Health check failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "UNHEALTHY",
				"error":  err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"status":    "HEALTHY",
			"timestamp": time.Now().UTC(),
		})
	})
	app.Get("/metrics", container.Metrics.Handler())

	authModule := container.GetAuthModule()
	authModule.RegisterRoutes(app.Group("/api/auth"))

	middleware := authModule.GetMiddleware()
	container.GetBankingModule().RegisterRoutes(app,
		middleware.RequireSession(),
		middleware.SecurityHeaders(),
		middleware.RateLimiter(authCfg.SessionRateLimit),
	)

	serverAddr := fmt.Sprintf("%s:%s", serverCfg.Host, serverCfg.Port)
	appLogger.Infof("Starting HTTP server on %s", serverAddr)

	serverShutdown := make(chan error, 1)
	go func() {
		serverShutdown <- app.Listen(serverAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverShutdown:
		if err != nil {
			appLogger.Errorf("Server failed: %v", err)
		}
	case sig := <-quit:
		appLogger.Infof("Received shutdown signal: %v", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.Errorf("Server forced to shutdown: %v", err)
		}
		appLogger.Info("HTTP server stopped")
	}
}
