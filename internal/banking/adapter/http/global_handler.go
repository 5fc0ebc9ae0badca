package http

import (
	"codbank/internal/banking/usecase"
	"codbank/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// GlobalHandler serves the public exchange rate routes.
type GlobalHandler struct {
	usecase usecase.BankingUsecaseInterface
	logger  logger.Logger
}

func NewGlobalHandler(uc usecase.BankingUsecaseInterface, log logger.Logger) *GlobalHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &GlobalHandler{usecase: uc, logger: log.WithComponent("global_handler")}
}

func (h *GlobalHandler) SetupRoutes(router fiber.Router) {
	router.Get("/rates", h.Rates)
	router.Post("/convert", h.Convert)
}

func (h *GlobalHandler) Rates(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"currencies": h.usecase.Rates()})
}

type convertRequest struct {
	Amount float64 `json:"amount"`
	From   string  `json:"from"`
	To     string  `json:"to"`
}

func (h *GlobalHandler) Convert(c *fiber.Ctx) error {
	var req convertRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	conversion, err := h.usecase.Convert(req.Amount, req.From, req.To)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(conversion)
}
