package auth

import (
	"fmt"

	authhttp "codbank/internal/auth/adapter/http"
	redisstore "codbank/internal/auth/adapter/persistence/redis"
	"codbank/internal/auth/adapter/security"
	"codbank/internal/auth/config"
	"codbank/internal/auth/domain/repository"
	"codbank/internal/auth/usecase"
	"codbank/internal/shared/eventbus"
	"codbank/internal/shared/logger"
	"codbank/internal/shared/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// AuthModule represents the complete session module
type AuthModule struct {
	tokenSvc   repository.TokenService
	usecase    usecase.SessionUsecaseInterface
	handler    *authhttp.SessionHandler
	middleware *authhttp.AuthMiddleware
	config     *config.Config
}

// NewAuthModule creates a new session module instance. A nil redis client disables
// server-side revocation; logout then only clears the cookie.
func NewAuthModule(
	cfg *config.Config,
	redisClient redis.UniversalClient,
	events eventbus.EventBusInterface,
	m *metrics.Metrics,
	log logger.Logger,
) (*AuthModule, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	tokenSvc, err := security.NewJWTokenService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	var revocations repository.RevocationStore
	if redisClient != nil {
		revocations = redisstore.NewRevocationStore(redisClient, cfg.RevocationPrefix, log)
	}

	sessionUsecase := usecase.NewSessionUsecase(tokenSvc, revocations, events, m, log)
	cookies := authhttp.NewSessionCookies(cfg)

	return &AuthModule{
		tokenSvc:   tokenSvc,
		usecase:    sessionUsecase,
		handler:    authhttp.NewSessionHandler(sessionUsecase, cookies, log),
		middleware: authhttp.NewAuthMiddleware(sessionUsecase, cookies),
		config:     cfg,
	}, nil
}

// RegisterRoutes registers the session endpoint under router (normally /api/auth).
func (am *AuthModule) RegisterRoutes(router fiber.Router) {
	am.handler.SetupRoutes(router,
		am.middleware.SecurityHeaders(),
		am.middleware.RateLimiter(am.config.SessionRateLimit),
	)
}

// GetUsecase returns the session usecase for external access
func (am *AuthModule) GetUsecase() usecase.SessionUsecaseInterface {
	return am.usecase
}

// GetMiddleware returns the session middleware
func (am *AuthModule) GetMiddleware() *authhttp.AuthMiddleware {
	return am.middleware
}

// GetSessionHandler returns the handler other login flows use to issue cookies.
func (am *AuthModule) GetSessionHandler() *authhttp.SessionHandler {
	return am.handler
}
