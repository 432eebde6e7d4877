package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/authgate/authgate/internal/authz"
	"github.com/authgate/authgate/internal/db/models"
)

// PermissionRepo implements authz.PermissionRepository over GORM.
type PermissionRepo struct {
	db *gorm.DB
}

// NewPermissionRepo creates a permission catalog repository.
func NewPermissionRepo(db *gorm.DB) *PermissionRepo {
	return &PermissionRepo{db: db}
}

// FindByCode returns the permission definition for the given code.
func (r *PermissionRepo) FindByCode(ctx context.Context, code string) (*models.Permission, error) {
	var permission models.Permission

	result := r.db.WithContext(ctx).Where("code = ?", code).First(&permission)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, authz.ErrNotFound
		}

		return nil, result.Error
	}

	return &permission, nil
}
