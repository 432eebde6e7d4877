package group

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/authgate/authgate/internal/db/models"
	"github.com/authgate/authgate/internal/web/handler"
)

// ListMembers returns the memberships of one group.
func (s *Service) ListMembers(c *fiber.Ctx) error {
	g, done := s.loadGroup(c)
	if done {
		return nil
	}

	var members []models.UserPermissionGroup
	if err := s.db.Preload("User").Where("group_id = ?", g.ID).Find(&members).Error; err != nil {
		log.Error().Err(err).Msg("load group members failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": handler.ErrInternal})
	}

	return c.JSON(fiber.Map{"members": members})
}

// AddMember adds a user to the group, optionally with an expiry.
func (s *Service) AddMember(c *fiber.Ctx) error {
	g, done := s.loadGroup(c)
	if done {
		return nil
	}

	input := new(memberInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	if err := s.validator.Struct(input); err != nil {
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

	var user models.User
	if err := s.db.First(&user, input.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user not found"})
		}

		log.Error().Err(err).Msg("load user failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": handler.ErrInternal})
	}

	membership := models.UserPermissionGroup{
		UserID:    input.UserID,
		GroupID:   g.ID,
		ExpiresAt: expiresAt,
		JoinedAt:  time.Now(),
		GrantedBy: currentUserID(c),
	}

	if err := s.db.Create(&membership).Error; err != nil {
		log.Error().Err(err).Msg("failed to add group member")

		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "failed to add member (already a member?)"})
	}

	s.purgeCache()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"membership": membership})
}

// RemoveMember removes a user from the group.
func (s *Service) RemoveMember(c *fiber.Ctx) error {
	g, done := s.loadGroup(c)
	if done {
		return nil
	}

	userID, err := strconv.ParseUint(c.Params("userID"), 10, 64)
	if err != nil || userID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.ErrInvalidID})
	}

	result := s.db.Where("group_id = ? AND user_id = ?", g.ID, userID).
		Delete(&models.UserPermissionGroup{})
	if result.Error != nil {
		log.Error().Err(result.Error).Msg("failed to remove group member")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": handler.ErrInternal})
	}

	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "membership not found"})
	}

	s.purgeCache()

	return c.JSON(fiber.Map{"status": "removed"})
}

// currentUserID returns the acting admin's user id from the session, if any.
func currentUserID(c *fiber.Ctx) *uint64 {
	user, ok := c.Locals("CurrentUser").(models.User)
	if !ok || user.ID == 0 {
		return nil
	}

	return &user.ID
}
