package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/authgate/authgate/internal/web/handler/login"
	"github.com/authgate/authgate/internal/web/session"
)

// Middleware is a Fiber middleware that rejects unauthenticated requests.
// Open endpoints (login, liveness, metrics) pass through.
func Middleware(c *fiber.Ctx) error {
	if isOpenEndpoint(c) {
		return c.Next()
	}

	sessionID := c.Cookies(login.CookieName)
	if sessionID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	sessData := new(session.Data)
	if err := sessData.Read(sessionID); err != nil || sessData.User.ID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	// Add the current user to locals for handler access
	c.Locals("CurrentUser", sessData.User)

	return c.Next()
}

// isOpenEndpoint reports whether the request targets an endpoint that must
// work without a session.
func isOpenEndpoint(c *fiber.Ctx) bool {
	path := strings.ToLower(c.Path())

	switch {
	case strings.HasPrefix(path, login.Path):
		return true
	case strings.HasPrefix(path, "/logout"):
		return true
	case strings.HasPrefix(path, "/checkalive"):
		return true
	case strings.HasPrefix(path, "/metrics"):
		return true
	default:
		return false
	}
}
