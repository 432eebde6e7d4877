// Package user provides JSON handlers for managing user accounts in the admin area.
package user

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/authgate/authgate/internal/authz"
	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/db/models"
	"github.com/authgate/authgate/internal/web/handler"
)

const (
	// Path is the base path for user management.
	Path = handler.RootPath + "admin/users"

	// RouteDetail addresses one user.
	RouteDetail = Path + "/:id"
	// RouteGrants addresses the direct grant collection of one user.
	RouteGrants = Path + "/:id/grants"
	// RouteGrantDetail addresses one direct grant.
	RouteGrantDetail = Path + "/:id/grants/:grantID"

	// ErrUserNotFound is returned when a user with the given id does not exist.
	ErrUserNotFound = "user not found"
)

// Purger invalidates cached authorization decisions after grant mutations.
type Purger interface {
	Purge()
}

// Service provides CRUD operations for users and their direct grants.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
	cache     Purger
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes. User CRUD is guarded by the user admin permission,
// direct grant management by the grant admin permission.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, checker authz.Checker, cache Purger) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()
	s.cache = cache

	userGuard := authz.RequirePermission(checker, authz.PermAdminUsers)
	grantGuard := authz.RequirePermission(checker, authz.PermAdminDirectGrants)

	app.Get(Path, userGuard, s.List)
	app.Post(Path, userGuard, s.Create)
	app.Get(RouteDetail, userGuard, s.Get)
	app.Put(RouteDetail, userGuard, s.Update)
	app.Delete(RouteDetail, userGuard, s.Delete)

	app.Get(RouteGrants, grantGuard, s.ListGrants)
	app.Post(RouteGrants, grantGuard, s.AddGrant)
	app.Delete(RouteGrantDetail, grantGuard, s.RemoveGrant)
}

// List returns users with simple pagination and search.
func (s *Service) List(c *fiber.Ctx) error {
	page := c.QueryInt(handler.QueryPage, 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt(handler.QueryPageSize, handler.DefaultPageSize)
	if pageSize < 1 || pageSize > handler.MaxPageSize {
		pageSize = handler.DefaultPageSize
	}

	search := c.Query(handler.QuerySearch, "")

	var (
		users      []models.User
		totalCount int64
		tx         = s.db.Model(&models.User{})
	)

	if search != "" {
		like := "%" + search + "%"
		tx = tx.Where("username LIKE ? OR email LIKE ?", like, like)
	}

	if err := tx.Count(&totalCount).Error; err != nil {
		log.Error().Err(err).Msg("count users failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": handler.ErrInternal})
	}

	offset := (page - 1) * pageSize
	if err := tx.Order("username ASC").Limit(pageSize).Offset(offset).Find(&users).Error; err != nil {
		log.Error().Err(err).Msg("query users failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": handler.ErrInternal})
	}

	return c.JSON(fiber.Map{
		"users":    publicUsers(users),
		"page":     page,
		"pageSize": pageSize,
		"total":    totalCount,
	})
}

// Get returns one user.
func (s *Service) Get(c *fiber.Ctx) error {
	u, done := s.loadUser(c)
	if done {
		return nil
	}

	return c.JSON(fiber.Map{"user": publicUser(*u)})
}

// Create handles creation of a new user account.
func (s *Service) Create(c *fiber.Ctx) error {
	input := new(userInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	if err := s.validator.Struct(input); err != nil {
		log.Warn().Err(err).Msg("validation failed for create user")

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "password is required"})
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	u := &models.User{
		Username:  input.Username,
		Email:     input.Email,
		Password:  models.HashPassword(input.Password),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Active:    active,
		TenantID:  input.TenantID,
	}

	if err := s.db.Create(u).Error; err != nil {
		log.Error().Err(err).Msg("failed to create user")

		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "failed to create user (duplicate username?)"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": publicUser(*u)})
}

// Update handles updating an existing user.
func (s *Service) Update(c *fiber.Ctx) error {
	u, done := s.loadUser(c)
	if done {
		return nil
	}

	input := new(userInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	if err := s.validator.Struct(input); err != nil {
		log.Warn().Err(err).Msg("validation failed for update user")

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	u.Username = input.Username
	u.Email = input.Email
	u.FirstName = input.FirstName
	u.LastName = input.LastName
	u.TenantID = input.TenantID

	if input.Active != nil {
		u.Active = *input.Active
	}

	if input.Password != "" {
		u.Password = models.HashPassword(input.Password)
	}

	if err := s.db.Save(u).Error; err != nil {
		log.Error().Err(err).Msg("failed to update user")

		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "failed to update user (duplicate username?)"})
	}

	// Deactivation must take effect immediately, not after cache expiry.
	s.purgeCache()

	return c.JSON(fiber.Map{"user": publicUser(*u)})
}

// Delete soft deletes a user.
func (s *Service) Delete(c *fiber.Ctx) error {
	u, done := s.loadUser(c)
	if done {
		return nil
	}

	if err := s.db.Delete(u).Error; err != nil {
		log.Error().Err(err).Msg("failed to delete user")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": handler.ErrInternal})
	}

	s.purgeCache()

	return c.JSON(fiber.Map{"status": "deleted"})
}

// loadUser resolves the :id route parameter. On failure the response has
// already been written and done is true.
func (s *Service) loadUser(c *fiber.Ctx) (u *models.User, done bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.ErrInvalidID})

		return nil, true
	}

	u = new(models.User)
	if err := s.db.First(u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": ErrUserNotFound})

			return nil, true
		}

		log.Error().Err(err).Msg("load user failed")
		_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": handler.ErrInternal})

		return nil, true
	}

	return u, false
}

func (s *Service) purgeCache() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

// userView is the JSON shape of a user; the password hash never leaves the server.
type userView struct {
	ID        uint64 `json:"id"`
	Active    bool   `json:"active"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	TenantID  *uint  `json:"tenant_id,omitempty"`
}

func publicUser(u models.User) userView {
	return userView{
		ID:        u.ID,
		Active:    u.Active,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		TenantID:  u.TenantID,
	}
}

func publicUsers(users []models.User) []userView {
	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, publicUser(u))
	}

	return out
}
