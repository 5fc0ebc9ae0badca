package http

import (
	"errors"

	"codbank/internal/banking/domain/model"
	"codbank/internal/docstore"
	"codbank/internal/docstore/rules"
	"codbank/internal/identity"
	"codbank/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// errorResponses maps domain errors to the status and message clients see.
var errorResponses = []struct {
	err     error
	status  int
	message string
}{
	{model.ErrUsernameRequired, fiber.StatusBadRequest, "Username is required"},
	{model.ErrInvalidAmount, fiber.StatusBadRequest, "Amount must be greater than zero"},
	{model.ErrNegativeAmount, fiber.StatusBadRequest, "Amount cannot be negative"},
	{model.ErrUnknownCurrency, fiber.StatusBadRequest, "Unknown currency"},
	{model.ErrInvalidAccountType, fiber.StatusBadRequest, "Invalid account type"},
	{model.ErrDepositTooSmall, fiber.StatusBadRequest, "Initial deposit is below the minimum"},
	{model.ErrNotConfirmed, fiber.StatusBadRequest, "Account opening must be confirmed"},
	{identity.ErrInvalidEmail, fiber.StatusBadRequest, "Invalid email format"},
	{identity.ErrWeakPassword, fiber.StatusBadRequest, "Password must be at least 6 characters"},
	{identity.ErrPasswordTooLong, fiber.StatusBadRequest, "Password must be at most 72 bytes"},
	{identity.ErrInvalidCredentials, fiber.StatusUnauthorized, "Invalid email or password"},
	{rules.ErrAccessDenied, fiber.StatusForbidden, "Access denied"},
	{model.ErrProfileNotFound, fiber.StatusNotFound, "Identity not found"},
	{docstore.ErrDocumentNotFound, fiber.StatusNotFound, "Not found"},
	{identity.ErrEmailInUse, fiber.StatusConflict, "Email already registered"},
	{model.ErrInsufficientFunds, fiber.StatusConflict, "Insufficient funds"},
	{identity.ErrUnsupported, fiber.StatusNotImplemented, "Operation not supported"},
}

// writeError answers with the mapped status, or 500 after logging anything unmapped.
func writeError(c *fiber.Ctx, log logger.Logger, err error) error {
	for _, r := range errorResponses {
		if errors.Is(err, r.err) {
			return c.Status(r.status).JSON(fiber.Map{"error": r.message})
		}
	}
	log.WithContext(c.UserContext()).Errorf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Invalid request body",
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized session",
	})
}
