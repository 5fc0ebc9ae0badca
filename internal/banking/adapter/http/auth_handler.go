package http

import (
	authmodel "codbank/internal/auth/domain/model"
	"codbank/internal/banking/domain/model"
	"codbank/internal/banking/usecase"
	"codbank/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// SessionIssuer sets the session cookie for a verified identity.
type SessionIssuer interface {
	IssueSession(c *fiber.Ctx, identity authmodel.Identity) error
}

// CredentialsHandler serves registration and password login.
type CredentialsHandler struct {
	usecase usecase.BankingUsecaseInterface
	issuer  SessionIssuer
	logger  logger.Logger
}

func NewCredentialsHandler(uc usecase.BankingUsecaseInterface, issuer SessionIssuer, log logger.Logger) *CredentialsHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &CredentialsHandler{
		usecase: uc,
		issuer:  issuer,
		logger:  log.WithComponent("credentials_handler"),
	}
}

// SetupRoutes mounts /register and /login, each behind middleware.
func (h *CredentialsHandler) SetupRoutes(router fiber.Router, middleware ...fiber.Handler) {
	router.Post("/register", chain(middleware, h.Register)...)
	router.Post("/login", chain(middleware, h.Login)...)
}

func chain(middleware []fiber.Handler, handler fiber.Handler) []fiber.Handler {
	handlers := make([]fiber.Handler, 0, len(middleware)+1)
	handlers = append(handlers, middleware...)
	return append(handlers, handler)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates the user and its profile. The client logs in separately.
func (h *CredentialsHandler) Register(c *fiber.Ctx) error {
	var req model.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	profile, err := h.usecase.Register(c.UserContext(), req)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"userId":  profile.UserID,
	})
}

// Login verifies the credentials and issues the session cookie.
func (h *CredentialsHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email and password are required",
		})
	}

	identity, err := h.usecase.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	if err := h.issuer.IssueSession(c, *identity); err != nil {
		return writeError(c, h.logger, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"username": identity.Username,
		"role":     identity.Role,
	})
}
