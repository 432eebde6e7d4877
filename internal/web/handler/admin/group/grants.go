package group

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/authgate/authgate/internal/authz"
	"github.com/authgate/authgate/internal/db/models"
	"github.com/authgate/authgate/internal/web/handler"
)

// ListGrants returns the permission grants attached to one group.
func (s *Service) ListGrants(c *fiber.Ctx) error {
	g, done := s.loadGroup(c)
	if done {
		return nil
	}

	var grants []models.GroupPermission
	if err := s.db.Where("group_id = ?", g.ID).Find(&grants).Error; err != nil {
		log.Error().Err(err).Msg("load group grants failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": handler.ErrInternal})
	}

	return c.JSON(fiber.Map{"grants": grants})
}

// AddGrant attaches a permission grant to the group. The permission code must
// exist in the catalog and conditions must be a flat scalar map.
func (s *Service) AddGrant(c *fiber.Ctx) error {
	g, done := s.loadGroup(c)
	if done {
		return nil
	}

	input := new(grantInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	if err := s.validator.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var perm models.Permission
	if err := s.db.Where("code = ?", input.PermissionCode).First(&perm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown permission code"})
		}

		log.Error().Err(err).Msg("permission lookup failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": handler.ErrInternal})
	}

	// Reject malformed conditions at write time; the aggregator would skip
	// them at evaluation time anyway.
	if _, err := authz.ParseConditions(input.Conditions); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	grant := models.GroupPermission{
		GroupID:        g.ID,
		PermissionCode: input.PermissionCode,
		Effect:         models.GrantEffect(input.Effect),
		Conditions:     datatypes.JSONMap(input.Conditions),
	}

	if err := s.db.Create(&grant).Error; err != nil {
		log.Error().Err(err).Msg("failed to create group grant")

		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "failed to create grant"})
	}

	s.purgeCache()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"grant": grant})
}

// RemoveGrant detaches a grant from the group.
func (s *Service) RemoveGrant(c *fiber.Ctx) error {
	g, done := s.loadGroup(c)
	if done {
		return nil
	}

	grantID, err := strconv.Atoi(c.Params("grantID"))
	if err != nil || grantID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.ErrInvalidID})
	}

	result := s.db.Where("id = ? AND group_id = ?", grantID, g.ID).
		Delete(&models.GroupPermission{})
	if result.Error != nil {
		log.Error().Err(result.Error).Msg("failed to remove group grant")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": handler.ErrInternal})
	}

	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "grant not found"})
	}

	s.purgeCache()

	return c.JSON(fiber.Map{"status": "removed"})
}
