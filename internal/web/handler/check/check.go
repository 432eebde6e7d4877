// Package check exposes the permission decision engine over HTTP for other
// services. The caller asks about an arbitrary user; its own right to do so is
// guarded by a dedicated permission.
package check

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/authgate/authgate/internal/authz"
	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/web/handler"
)

// Path is the decision endpoint path.
const Path = handler.RootPath + "authz/check"

// Service exposes the decision endpoint.
type Service struct {
	cfg     *config.Config
	checker authz.Checker
}

// Handler is the exported instance.
var Handler = Service{}

// checkBody is the JSON request for a permission check on behalf of a user.
type checkBody struct {
	UserID         uint64            `json:"user_id"`
	PermissionCode string            `json:"permission_code"`
	Resource       string            `json:"resource"`
	Context        map[string]string `json:"context"`
}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, checker authz.Checker) {
	if app == nil || cfg == nil || checker == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.checker = checker

	app.Post(Path, authz.RequirePermission(checker, authz.PermAuthzCheck), s.Check)
}

// Check runs one permission check and returns the decision with its reason.
func (s *Service) Check(c *fiber.Ctx) error {
	body := new(checkBody)
	if err := c.BodyParser(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	decision, err := s.checker.CheckPermission(c.Context(), authz.CheckRequest{
		UserID:         body.UserID,
		PermissionCode: body.PermissionCode,
		Resource:       body.Resource,
		Context:        body.Context,
		IP:             c.IP(),
		UserAgent:      c.Get(fiber.HeaderUserAgent),
		Endpoint:       c.Path(),
	})

	switch {
	case errors.Is(err, authz.ErrNotAuthenticated), errors.Is(err, authz.ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, authz.ErrLookupFailure):
		// The backing store failed; this is an operational incident, not a deny.
		log.Error().Err(err).Uint64("user_id", body.UserID).
			Str("permission", body.PermissionCode).
			Msg("decision lookup failed")

		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "lookup failure"})
	case err != nil:
		log.Error().Err(err).Msg("permission check failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": handler.ErrInternal})
	}

	return c.JSON(decision)
}
