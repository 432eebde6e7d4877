package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/authgate/authgate/internal/db/models"
)

// DirectPermissionRepo implements authz.UserDirectPermissionRepository over GORM.
type DirectPermissionRepo struct {
	db *gorm.DB
}

// NewDirectPermissionRepo creates a direct grant repository.
func NewDirectPermissionRepo(db *gorm.DB) *DirectPermissionRepo {
	return &DirectPermissionRepo{db: db}
}

// FindActiveByUserAndPermission returns the user's non-expired direct grants
// for the permission code.
func (r *DirectPermissionRepo) FindActiveByUserAndPermission(ctx context.Context, userID uint64, code string) ([]models.UserDirectPermission, error) {
	var grants []models.UserDirectPermission

	result := r.db.WithContext(ctx).
		Where("user_id = ? AND permission_code = ?", userID, code).
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Find(&grants)
	if result.Error != nil {
		return nil, result.Error
	}

	return grants, nil
}
