package http

import (
	"time"

	"codbank/internal/auth/domain/repository"
	"codbank/internal/auth/usecase"
	"codbank/internal/shared/contextkeys"
	"codbank/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const localsClaims = "session_claims"

// AuthMiddleware provides session middleware for Fiber
type AuthMiddleware struct {
	usecase usecase.SessionUsecaseInterface
	cookies *SessionCookies
}

// NewAuthMiddleware creates a new session middleware
func NewAuthMiddleware(uc usecase.SessionUsecaseInterface, cookies *SessionCookies) *AuthMiddleware {
	return &AuthMiddleware{
		usecase: uc,
		cookies: cookies,
	}
}

// RequireSession rejects requests without a verified session carrying a user id.
// The claims are exposed through Locals and the user context.
func (m *AuthMiddleware) RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := m.usecase.VerifySession(c.UserContext(), m.cookies.Read(c))
		if !ok || claims.UserID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized session",
			})
		}

		c.Locals(localsClaims, claims)
		c.Locals(string(contextkeys.UserIDKey), claims.UserID)

		ctx := c.UserContext()
		ctx = utils.WithUserID(ctx, claims.UserID)
		ctx = utils.WithUsername(ctx, claims.Username())
		ctx = utils.WithRole(ctx, claims.Role)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// SecurityHeaders adds security headers
func (m *AuthMiddleware) SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("Cache-Control", "no-store")
		return c.Next()
	}
}

// RateLimiter limits session and login requests per client IP. Forwarded headers only
// count when the app is configured with a ProxyHeader and the peer is a trusted proxy.
func (m *AuthMiddleware) RateLimiter(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded. Please try again later.",
			})
		},
	})
}

// RequestID middleware
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		ContextKey: string(contextkeys.RequestIDKey),
	})
}

// RequestContext copies the request id stored by RequestID into the user context.
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := c.Locals(string(contextkeys.RequestIDKey)).(string); ok && id != "" {
			c.SetUserContext(utils.WithRequestID(c.UserContext(), id))
		}
		return c.Next()
	}
}

// SessionClaims returns the claims stored by RequireSession.
func SessionClaims(c *fiber.Ctx) (*repository.Claims, bool) {
	claims, ok := c.Locals(localsClaims).(*repository.Claims)
	return claims, ok
}

// GetUserID returns the session user id stored by RequireSession.
func GetUserID(c *fiber.Ctx) (string, bool) {
	userID, ok := c.Locals(string(contextkeys.UserIDKey)).(string)
	return userID, ok && userID != ""
}
