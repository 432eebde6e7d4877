// Package settings provides JSON handlers for runtime engine settings.
// Settings live in the database so operators can change them without a
// restart or config rollout.
package settings

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/authgate/authgate/internal/authz"
	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/db/controller/setting"
	"github.com/authgate/authgate/internal/web/handler"
)

// Path is the base path for runtime settings.
const Path = handler.RootPath + "admin/settings"

// RouteAuditMode addresses the audit mode setting.
const RouteAuditMode = Path + "/audit-mode"

// Recorder consumes audit mode changes.
type Recorder interface {
	SetMode(mode authz.AuditMode)
}

// Service manages runtime engine settings.
type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	recorder Recorder
}

// Handler is the exported instance.
var Handler = Service{}

// auditModeBody is the JSON body for updating the audit mode.
type auditModeBody struct {
	Mode string `json:"mode"`
}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, checker authz.Checker, recorder Recorder) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.recorder = recorder

	guard := authz.RequirePermission(checker, authz.PermAdminSettings)

	app.Get(RouteAuditMode, guard, s.GetAuditMode)
	app.Put(RouteAuditMode, guard, s.SetAuditMode)
}

// GetAuditMode returns the active audit recording mode.
func (s *Service) GetAuditMode(c *fiber.Ctx) error {
	mode, err := setting.AuditMode(s.db)
	if err != nil && !errors.Is(err, setting.ErrInvalidAuditMode) {
		log.Error().Err(err).Msg("read audit mode failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": handler.ErrInternal})
	}

	return c.JSON(fiber.Map{"mode": mode})
}

// SetAuditMode stores a new audit recording mode and applies it immediately.
func (s *Service) SetAuditMode(c *fiber.Ctx) error {
	body := new(auditModeBody)
	if err := c.BodyParser(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	mode := authz.AuditMode(body.Mode)

	if err := setting.SetAuditMode(s.db, mode); err != nil {
		if errors.Is(err, setting.ErrInvalidAuditMode) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		log.Error().Err(err).Msg("store audit mode failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": handler.ErrInternal})
	}

	if s.recorder != nil {
		s.recorder.SetMode(mode)
	}

	return c.JSON(fiber.Map{"mode": mode})
}
