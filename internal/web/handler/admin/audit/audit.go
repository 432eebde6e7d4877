// Package audit provides the read-only audit trail endpoint. Audit entries
// are append-only; there is deliberately no update or delete route.
package audit

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/authgate/authgate/internal/authz"
	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/db/models"
	"github.com/authgate/authgate/internal/web/handler"
)

// Path is the base path for audit trail access.
const Path = handler.RootPath + "admin/audit"

// Service lists audit entries.
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

	app.Get(Path, authz.RequirePermission(checker, authz.PermAdminAuditRead), s.List)
}

// List returns audit entries, newest first, with optional filters.
func (s *Service) List(c *fiber.Ctx) error {
	page := c.QueryInt(handler.QueryPage, 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt(handler.QueryPageSize, handler.DefaultPageSize)
	if pageSize < 1 || pageSize > handler.MaxPageSize {
		pageSize = handler.DefaultPageSize
	}

	tx := s.db.Model(&models.PermissionAuditLog{})

	if userID := c.QueryInt("user_id", 0); userID > 0 {
		tx = tx.Where("user_id = ?", userID)
	}

	if decision := c.Query("decision", ""); decision != "" {
		tx = tx.Where("decision = ?", decision)
	}

	if code := c.Query("permission", ""); code != "" {
		tx = tx.Where("permission_code = ?", code)
	}

	var totalCount int64
	if err := tx.Count(&totalCount).Error; err != nil {
		log.Error().Err(err).Msg("count audit entries failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": handler.ErrInternal})
	}

	var entries []models.PermissionAuditLog

	offset := (page - 1) * pageSize
	if err := tx.Order("id DESC").Limit(pageSize).Offset(offset).Find(&entries).Error; err != nil {
		log.Error().Err(err).Msg("query audit entries failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": handler.ErrInternal})
	}

	return c.JSON(fiber.Map{
		"entries":  entries,
		"page":     page,
		"pageSize": pageSize,
		"total":    totalCount,
	})
}
