package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/authgate/authgate/internal/authz"
	"github.com/authgate/authgate/internal/db/models"
)

// GroupRepo implements authz.PermissionGroupRepository over GORM.
type GroupRepo struct {
	db *gorm.DB
}

// NewGroupRepo creates a permission group repository.
func NewGroupRepo(db *gorm.DB) *GroupRepo {
	return &GroupRepo{db: db}
}

// FindMembershipsByUser returns the user's memberships with the group
// preloaded. GORM's soft-delete scope excludes deleted groups from the
// preload, leaving a zero-value (inactive) Group that the resolver skips.
func (r *GroupRepo) FindMembershipsByUser(ctx context.Context, userID uint64) ([]models.UserPermissionGroup, error) {
	var memberships []models.UserPermissionGroup

	result := r.db.WithContext(ctx).
		Preload("Group").
		Where("user_id = ?", userID).
		Find(&memberships)
	if result.Error != nil {
		return nil, result.Error
	}

	return memberships, nil
}

// FindByID returns a single group. Soft-deleted groups are reported as
// authz.ErrNotFound, which the resolver treats as a terminated parent chain.
func (r *GroupRepo) FindByID(ctx context.Context, id uint) (*models.PermissionGroup, error) {
	var group models.PermissionGroup

	result := r.db.WithContext(ctx).First(&group, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, authz.ErrNotFound
		}

		return nil, result.Error
	}

	return &group, nil
}
