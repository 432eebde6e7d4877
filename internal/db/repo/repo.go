// Package repo provides the GORM-backed implementations of the authorization
// engine's repository interfaces.
package repo

import (
	"gorm.io/gorm"

	"github.com/authgate/authgate/internal/authz"
)

// New bundles the GORM implementations of all engine repositories.
func New(db *gorm.DB) authz.Repositories {
	return authz.Repositories{
		Permissions:  NewPermissionRepo(db),
		Groups:       NewGroupRepo(db),
		GroupGrants:  NewGroupPermissionRepo(db),
		DirectGrants: NewDirectPermissionRepo(db),
	}
}
