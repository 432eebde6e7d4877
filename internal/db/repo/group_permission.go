package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/authgate/authgate/internal/db/models"
)

// GroupPermissionRepo implements authz.GroupPermissionRepository over GORM.
type GroupPermissionRepo struct {
	db *gorm.DB
}

// NewGroupPermissionRepo creates a group grant repository.
func NewGroupPermissionRepo(db *gorm.DB) *GroupPermissionRepo {
	return &GroupPermissionRepo{db: db}
}

// FindByGroupsAndPermission returns every grant for the permission code
// attached to any of the given groups.
func (r *GroupPermissionRepo) FindByGroupsAndPermission(ctx context.Context, groupIDs []uint, code string) ([]models.GroupPermission, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}

	var grants []models.GroupPermission

	result := r.db.WithContext(ctx).
		Where("group_id IN ? AND permission_code = ?", groupIDs, code).
		Find(&grants)
	if result.Error != nil {
		return nil, result.Error
	}

	return grants, nil
}
