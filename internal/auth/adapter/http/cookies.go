package http

import (
	"time"

	"codbank/internal/auth/config"

	"github.com/gofiber/fiber/v2"
)

// SessionCookies writes and clears the session cookie with one fixed policy.
type SessionCookies struct {
	name     string
	path     string
	domain   string
	maxAge   int
	secure   bool
	sameSite string
}

// NewSessionCookies builds the cookie policy from config.
func NewSessionCookies(cfg *config.Config) *SessionCookies {
	return &SessionCookies{
		name:     cfg.CookieName,
		path:     cfg.CookiePath,
		domain:   cfg.CookieDomain,
		maxAge:   cfg.CookieMaxAge(),
		secure:   cfg.IsProduction(),
		sameSite: cfg.CookieSameSite,
	}
}

// Name returns the cookie name.
func (p *SessionCookies) Name() string {
	return p.name
}

// Read returns the session token sent by the client, or "".
func (p *SessionCookies) Read(c *fiber.Ctx) string {
	return c.Cookies(p.name)
}

// Set attaches token to the response, replacing any earlier session cookie.
func (p *SessionCookies) Set(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     p.name,
		Value:    token,
		Path:     p.path,
		Domain:   p.domain,
		MaxAge:   p.maxAge,
		Secure:   p.secure,
		HTTPOnly: true,
		SameSite: p.sameSite,
	})
}

// Clear expires the session cookie on the client.
func (p *SessionCookies) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     p.name,
		Value:    "",
		Path:     p.path,
		Domain:   p.domain,
		MaxAge:   -1,
		Secure:   p.secure,
		HTTPOnly: true,
		SameSite: p.sameSite,
		Expires:  time.Unix(0, 0),
	})
}
