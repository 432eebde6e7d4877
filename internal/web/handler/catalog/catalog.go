// Package catalog provides the read-only permission catalog endpoint.
package catalog

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/authgate/authgate/internal/authz"
	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/db/models"
	"github.com/authgate/authgate/internal/web/handler"
)

// Path is the base path for the permission catalog.
const Path = handler.RootPath + "permissions"

// Service lists the permission catalog.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, checker authz.Checker) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg

	app.Get(Path, authz.RequirePermission(checker, authz.PermAdminPermissionsRead), s.List)
}

// List returns the full catalog, optionally filtered by module.
func (s *Service) List(c *fiber.Ctx) error {
	tx := s.db.Model(&models.Permission{})

	if module := c.Query("module", ""); module != "" {
		tx = tx.Where("module = ?", module)
	}

	var permissions []models.Permission
	if err := tx.Order("code ASC").Find(&permissions).Error; err != nil {
		log.Error().Err(err).Msg("query permission catalog failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": handler.ErrInternal})
	}

	return c.JSON(fiber.Map{"permissions": permissions})
}
