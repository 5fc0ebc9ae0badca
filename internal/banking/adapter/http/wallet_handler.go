package http

import (
	"context"

	authhttp "codbank/internal/auth/adapter/http"
	"codbank/internal/banking/usecase"
	"codbank/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// WalletHandler serves /api/wallet deposits and withdrawals.
type WalletHandler struct {
	usecase usecase.BankingUsecaseInterface
	logger  logger.Logger
}

func NewWalletHandler(uc usecase.BankingUsecaseInterface, log logger.Logger) *WalletHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &WalletHandler{usecase: uc, logger: log.WithComponent("wallet_handler")}
}

func (h *WalletHandler) SetupRoutes(router fiber.Router, requireSession fiber.Handler) {
	router.Post("/deposit", requireSession, h.Deposit)
	router.Post("/withdraw", requireSession, h.Withdraw)
}

type amountRequest struct {
	Amount float64 `json:"amount"`
}

func (h *WalletHandler) Deposit(c *fiber.Ctx) error {
	return h.apply(c, h.usecase.Deposit)
}

func (h *WalletHandler) Withdraw(c *fiber.Ctx) error {
	return h.apply(c, h.usecase.Withdraw)
}

func (h *WalletHandler) apply(c *fiber.Ctx, op func(ctx context.Context, userID string, amount float64) (float64, error)) error {
	userID, ok := authhttp.GetUserID(c)
	if !ok {
		return unauthorized(c)
	}
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	balance, err := op(c.UserContext(), userID, req.Amount)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"balance": balance})
}
