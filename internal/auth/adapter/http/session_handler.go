package http

import (
	"errors"

	"codbank/internal/auth/domain/model"
	"codbank/internal/auth/usecase"
	"codbank/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// SessionHandler serves POST /api/auth/session.
type SessionHandler struct {
	usecase usecase.SessionUsecaseInterface
	cookies *SessionCookies
	logger  logger.Logger
}

// NewSessionHandler creates a new session HTTP handler
func NewSessionHandler(uc usecase.SessionUsecaseInterface, cookies *SessionCookies, log logger.Logger) *SessionHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &SessionHandler{
		usecase: uc,
		cookies: cookies,
		logger:  log.WithComponent("session_handler"),
	}
}

// SetupRoutes mounts the session endpoint under router.
func (h *SessionHandler) SetupRoutes(router fiber.Router, middleware ...fiber.Handler) {
	handlers := append(middleware, h.Session)
	router.Post("/session", handlers...)
}

// Session creates a session from posted identity claims, or ends it on {"action":"logout"}.
func (h *SessionHandler) Session(c *fiber.Ctx) error {
	var req model.SessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	cmd, err := req.Command()
	if err != nil {
		return h.writeCommandError(c, err)
	}

	switch cmd := cmd.(type) {
	case model.LogoutRequest:
		h.usecase.DeleteSession(c.UserContext(), h.cookies.Read(c))
		h.cookies.Clear(c)
		return c.JSON(fiber.Map{"success": true})

	case model.LoginRequest:
		issued, err := h.usecase.CreateSession(c.UserContext(), cmd)
		if err != nil {
			return h.writeCommandError(c, err)
		}
		h.cookies.Set(c, issued.Token)
		return c.JSON(fiber.Map{"success": true})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}

// IssueSession mints a session for identity and sets the cookie. Login flows outside
// this package use it so the cookie policy stays in one place.
func (h *SessionHandler) IssueSession(c *fiber.Ctx, identity model.Identity) error {
	issued, err := h.usecase.CreateSession(c.UserContext(), model.LoginRequest{Identity: identity})
	if err != nil {
		return err
	}
	h.cookies.Set(c, issued.Token)
	return nil
}

func (h *SessionHandler) writeCommandError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, model.ErrMissingIdentity):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing identity data",
		})
	case errors.Is(err, model.ErrInvalidRole):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid role",
		})
	}

	h.logger.WithContext(c.UserContext()).Errorf("Session API error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}
