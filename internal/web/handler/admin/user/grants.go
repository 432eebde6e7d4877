package user

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/authgate/authgate/internal/authz"
	"github.com/authgate/authgate/internal/db/models"
	"github.com/authgate/authgate/internal/web/handler"
)

// ListGrants returns the direct permission grants of one user.
func (s *Service) ListGrants(c *fiber.Ctx) error {
	u, done := s.loadUser(c)
	if done {
		return nil
	}

	var grants []models.UserDirectPermission
	if err := s.db.Where("user_id = ?", u.ID).Find(&grants).Error; err != nil {
		log.Error().Err(err).Msg("load direct grants failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": handler.ErrInternal})
	}

	return c.JSON(fiber.Map{"grants": grants})
}

// AddGrant attaches a direct permission grant to the user.
func (s *Service) AddGrant(c *fiber.Ctx) error {
	u, done := s.loadUser(c)
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

	if _, err := authz.ParseConditions(input.Conditions); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var expiresAt *time.Time

	if input.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, input.ExpiresAt)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "expires_at must be RFC 3339"})
		}

		expiresAt = &t
	}

	grant := models.UserDirectPermission{
		UserID:         u.ID,
		PermissionCode: input.PermissionCode,
		Effect:         models.GrantEffect(input.Effect),
		Conditions:     datatypes.JSONMap(input.Conditions),
		ExpiresAt:      expiresAt,
		GrantedBy:      grantingUserID(c),
	}

	if err := s.db.Create(&grant).Error; err != nil {
		log.Error().Err(err).Msg("failed to create direct grant")

		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "failed to create grant"})
	}

	s.purgeCache()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"grant": grant})
}

// RemoveGrant detaches a direct grant from the user.
func (s *Service) RemoveGrant(c *fiber.Ctx) error {
	u, done := s.loadUser(c)
	if done {
		return nil
	}

	grantID, err := strconv.Atoi(c.Params("grantID"))
	if err != nil || grantID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.ErrInvalidID})
	}

	result := s.db.Where("id = ? AND user_id = ?", grantID, u.ID).
		Delete(&models.UserDirectPermission{})
	if result.Error != nil {
		log.Error().Err(result.Error).Msg("failed to remove direct grant")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": handler.ErrInternal})
	}

	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "grant not found"})
	}

	s.purgeCache()

	return c.JSON(fiber.Map{"status": "removed"})
}

// grantingUserID returns the acting admin's user id from the session, if any.
func grantingUserID(c *fiber.Ctx) *uint64 {
	user, ok := c.Locals("CurrentUser").(models.User)
	if !ok || user.ID == 0 {
		return nil
	}

	return &user.ID
}
