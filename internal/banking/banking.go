// Package banking assembles the banking usecases, their HTTP adapters, the realtime
// feed and the audit stream.
package banking

import (
	bankinghttp "codbank/internal/banking/adapter/http"
	"codbank/internal/banking/adapter/persistence"
	"codbank/internal/banking/config"
	"codbank/internal/banking/usecase"
	"codbank/internal/docstore"
	"codbank/internal/identity"
	"codbank/internal/shared/eventbus"
	"codbank/internal/shared/logger"
	"codbank/internal/shared/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// BankingModule represents the complete banking module
type BankingModule struct {
	usecase     *usecase.BankingUsecase
	dashboard   *bankinghttp.DashboardHandler
	wallet      *bankinghttp.WalletHandler
	global      *bankinghttp.GlobalHandler
	credentials *bankinghttp.CredentialsHandler
	hub         *bankinghttp.RealtimeHub
	stream      *persistence.RedisEventStream
}

// NewBankingModule wires the module and subscribes the realtime hub, plus the audit
// stream when redisClient is set, to events.
func NewBankingModule(
	cfg *config.Config,
	provider identity.Provider,
	store docstore.Store,
	issuer bankinghttp.SessionIssuer,
	redisClient redis.UniversalClient,
	events eventbus.EventBusInterface,
	m *metrics.Metrics,
	log logger.Logger,
) *BankingModule {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if cfg == nil {
		cfg = config.Default()
	}

	uc := usecase.NewBankingUsecase(provider, store, events, cfg, log)
	module := &BankingModule{
		usecase:     uc,
		dashboard:   bankinghttp.NewDashboardHandler(uc, m, log),
		wallet:      bankinghttp.NewWalletHandler(uc, log),
		global:      bankinghttp.NewGlobalHandler(uc, log),
		credentials: bankinghttp.NewCredentialsHandler(uc, issuer, log),
		hub:         bankinghttp.NewRealtimeHub(log),
	}

	if events != nil {
		module.hub.Subscribe(events)
		if redisClient != nil {
			module.stream = persistence.NewRedisEventStream(redisClient, cfg.EventStream, cfg.EventStreamMaxLen, log)
			module.stream.Subscribe(events)
		}
	}
	return module
}

// RegisterRoutes mounts every banking route on app. authMiddleware guards the
// credential endpoints; requireSession guards everything tied to a user.
func (bm *BankingModule) RegisterRoutes(app fiber.Router, requireSession fiber.Handler, authMiddleware ...fiber.Handler) {
	api := app.Group("/api")
	bm.credentials.SetupRoutes(api.Group("/auth"), authMiddleware...)
	bm.dashboard.SetupRoutes(api.Group("/dashboard"), requireSession)
	bm.wallet.SetupRoutes(api.Group("/wallet"), requireSession)
	bm.global.SetupRoutes(api.Group("/global"))
	bm.hub.SetupRoutes(app.Group("/ws"), requireSession)
}

// GetUsecase returns the banking usecase for external access
func (bm *BankingModule) GetUsecase() usecase.BankingUsecaseInterface {
	return bm.usecase
}

// GetRealtimeHub returns the websocket hub
func (bm *BankingModule) GetRealtimeHub() *bankinghttp.RealtimeHub {
	return bm.hub
}
