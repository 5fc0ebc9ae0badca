package http

import (
	"errors"

	authhttp "codbank/internal/auth/adapter/http"
	"codbank/internal/banking/domain/model"
	"codbank/internal/banking/usecase"
	"codbank/internal/shared/logger"
	"codbank/internal/shared/metrics"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler serves the session-protected /api/dashboard routes.
type DashboardHandler struct {
	usecase usecase.BankingUsecaseInterface
	metrics *metrics.Metrics
	logger  logger.Logger
}

// NewDashboardHandler creates the dashboard handler. m may be nil.
func NewDashboardHandler(uc usecase.BankingUsecaseInterface, m *metrics.Metrics, log logger.Logger) *DashboardHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &DashboardHandler{
		usecase: uc,
		metrics: m,
		logger:  log.WithComponent("dashboard_handler"),
	}
}

// SetupRoutes mounts the dashboard endpoints. requireSession must run first.
func (h *DashboardHandler) SetupRoutes(router fiber.Router, requireSession fiber.Handler) {
	router.Get("/balance", requireSession, h.Balance)
	router.Get("/accounts", requireSession, h.ListAccounts)
	router.Post("/accounts", requireSession, h.OpenAccount)
}

// Balance returns the caller's balance and username with the server sync time.
func (h *DashboardHandler) Balance(c *fiber.Ctx) error {
	userID, ok := authhttp.GetUserID(c)
	if !ok {
		return h.balanceStatus(c, fiber.StatusUnauthorized, "Unauthorized session")
	}

	view, err := h.usecase.GetBalance(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			h.logger.WithContext(c.UserContext()).WithFields(map[string]interface{}{
				"user_id": userID,
			}).Error("Authenticated session has no profile document")
			return h.balanceStatus(c, fiber.StatusNotFound, "Identity not found")
		}
		h.logger.WithContext(c.UserContext()).Errorf("Balance read failed for %s: %v", userID, err)
		return h.balanceStatus(c, fiber.StatusInternalServerError, "Internal database error")
	}

	h.metrics.BalanceRead(fiber.StatusOK)
	return c.JSON(fiber.Map{
		"balance":  view.Balance,
		"username": view.Username,
		"lastSync": view.LastSyncString(),
	})
}

func (h *DashboardHandler) balanceStatus(c *fiber.Ctx, status int, message string) error {
	h.metrics.BalanceRead(status)
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func (h *DashboardHandler) ListAccounts(c *fiber.Ctx) error {
	userID, ok := authhttp.GetUserID(c)
	if !ok {
		return unauthorized(c)
	}
	accounts, err := h.usecase.ListAccounts(c.UserContext(), userID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"accounts": accounts})
}

func (h *DashboardHandler) OpenAccount(c *fiber.Ctx) error {
	userID, ok := authhttp.GetUserID(c)
	if !ok {
		return unauthorized(c)
	}
	var req model.OpenAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	account, err := h.usecase.OpenAccount(c.UserContext(), userID, req)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(account)
}
