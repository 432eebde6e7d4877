package daemon

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/authgate/authgate/internal/authz"
	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/db/models"
)

// adminGroupSlug identifies the built-in administrators group.
const adminGroupSlug = "administrators"

// seed creates the built-in permission catalog, the administrators group with
// its grants, and a default admin account on an empty database. Existing rows
// are never modified, so seeding is safe to run on every start.
func seed(_ *config.Config, db *gorm.DB) {
	seedPermissions(db)

	group := seedAdminGroup(db)
	if group == nil {
		return
	}

	seedAdminUser(db, group)
}

// seedPermissions inserts catalog entries missing from the database. Codes
// already present are left untouched.
func seedPermissions(db *gorm.DB) {
	for _, def := range authz.Definitions {
		var existing models.Permission

		err := db.Where("code = ?", def.Code).First(&existing).Error
		if err == nil {
			continue
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error().Err(err).Str("code", def.Code).Msg("seed: permission lookup failed")
			continue
		}

		module, resource, action := authz.SplitCode(def.Code)

		if err := db.Create(&models.Permission{
			Code:        def.Code,
			Module:      module,
			Resource:    resource,
			Action:      action,
			Description: def.Description,
		}).Error; err != nil {
			log.Error().Err(err).Str("code", def.Code).Msg("seed: permission create failed")
		}
	}
}

// seedAdminGroup ensures the system administrators group exists and holds an
// allow grant for every built-in permission.
func seedAdminGroup(db *gorm.DB) *models.PermissionGroup {
	group := &models.PermissionGroup{}

	err := db.Where("slug = ?", adminGroupSlug).First(group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		group = &models.PermissionGroup{
			Name:        "Administrators",
			Slug:        adminGroupSlug,
			Description: "Built-in group holding every administrative permission",
			IsSystem:    true,
			IsActive:    true,
		}

		if err = db.Create(group).Error; err != nil {
			log.Error().Err(err).Msg("seed: administrators group create failed")
			return nil
		}
	} else if err != nil {
		log.Error().Err(err).Msg("seed: administrators group lookup failed")
		return nil
	}

	for _, def := range authz.Definitions {
		var count int64

		db.Model(&models.GroupPermission{}).
			Where("group_id = ? AND permission_code = ?", group.ID, def.Code).
			Count(&count)

		if count > 0 {
			continue
		}

		if err := db.Create(&models.GroupPermission{
			GroupID:        group.ID,
			PermissionCode: def.Code,
			Effect:         models.GrantEffectAllow,
		}).Error; err != nil {
			log.Error().Err(err).Str("code", def.Code).Msg("seed: admin grant create failed")
		}
	}

	return group
}

// seedAdminUser creates the default admin account when the user table is
// empty and makes it a member of the administrators group.
func seedAdminUser(db *gorm.DB, group *models.PermissionGroup) {
	var count int64

	db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return
	}

	user := &models.User{
		Username: "admin",
		Email:    "admin@localhost",
		Password: models.HashPassword("changeme"),
		Active:   true,
	}

	if err := db.Create(user).Error; err != nil {
		log.Error().Err(err).Msg("seed: admin user create failed")
		return
	}

	if err := db.Create(&models.UserPermissionGroup{
		UserID:   user.ID,
		GroupID:  group.ID,
		JoinedAt: time.Now(),
	}).Error; err != nil {
		log.Error().Err(err).Msg("seed: admin membership create failed")
		return
	}

	log.Warn().Msg("seed: created default admin user with password 'changeme', change it immediately")
}
