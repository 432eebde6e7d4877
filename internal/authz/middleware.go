package authz

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/authgate/authgate/internal/web/session"
)

// RequirePermission creates Fiber middleware that requires a specific
// permission. The decision engine runs once per request; the full request
// context (IP, user agent, endpoint) is recorded in the audit trail.
//
// Policy on engine errors: fail closed. A lookup failure is returned as 500
// and logged as an operational incident, never converted into a 403.
func RequirePermission(checker Checker, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := sessionUserID(c)
		if userID == 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		decision, err := checker.CheckPermission(c.Context(), CheckRequest{
			UserID:         userID,
			PermissionCode: permission,
			IP:             c.IP(),
			UserAgent:      c.Get(fiber.HeaderUserAgent),
			Endpoint:       c.Path(),
			Context:        requestContext(c),
		})

		if errors.Is(err, ErrNotAuthenticated) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		if err != nil {
			log.Error().Err(err).Uint64("user_id", userID).Str("permission", permission).
				Msg("permission check failed")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}

		if !decision.Allowed {
			log.Warn().Uint64("user_id", userID).Str("permission", permission).
				Str("reason", decision.Reason).
				Msg("permission denied")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":  "forbidden",
				"reason": decision.Reason,
			})
		}

		return c.Next()
	}
}

// RequireAnyPermission creates Fiber middleware that passes when the user
// holds at least one of the given permissions.
func RequireAnyPermission(checker Checker, permissions ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := sessionUserID(c)
		if userID == 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		for _, permission := range permissions {
			decision, err := checker.CheckPermission(c.Context(), CheckRequest{
				UserID:         userID,
				PermissionCode: permission,
				IP:             c.IP(),
				UserAgent:      c.Get(fiber.HeaderUserAgent),
				Endpoint:       c.Path(),
				Context:        requestContext(c),
			})
			if err != nil {
				log.Error().Err(err).Uint64("user_id", userID).Strs("permissions", permissions).
					Msg("permission check failed")

				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
			}

			if decision.Allowed {
				return c.Next()
			}
		}

		log.Warn().Uint64("user_id", userID).Strs("permissions", permissions).
			Msg("permission denied")

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}
}

// sessionUserID extracts the authenticated user from the request session.
// Returns 0 when no valid session exists.
func sessionUserID(c *fiber.Ctx) uint64 {
	sessionID := c.Cookies("session")
	if sessionID == "" {
		return 0
	}

	sessionData := new(session.Data)
	if err := sessionData.Read(sessionID); err != nil {
		return 0
	}

	return sessionData.User.ID
}

// requestContext extracts grant-condition attributes from the request.
// Callers supply them via X-Authz-* headers (e.g. X-Authz-Department: hr
// becomes {"department": "hr"}).
func requestContext(c *fiber.Ctx) map[string]string {
	const prefix = "x-authz-"

	var attrs map[string]string

	for key, values := range c.GetReqHeaders() {
		lower := strings.ToLower(key)
		if !strings.HasPrefix(lower, prefix) || len(lower) == len(prefix) || len(values) == 0 {
			continue
		}

		if attrs == nil {
			attrs = make(map[string]string)
		}

		attrs[lower[len(prefix):]] = values[0]
	}

	return attrs
}
