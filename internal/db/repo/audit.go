package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/authgate/authgate/internal/db/models"
)

// AuditRepo implements authz.AuditLogRepository over GORM. The table is
// append-only: this type deliberately exposes no update or delete method.
type AuditRepo struct {
	db *gorm.DB
}

// NewAuditRepo creates an audit log repository.
func NewAuditRepo(db *gorm.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Append persists one audit entry.
func (r *AuditRepo) Append(ctx context.Context, entry *models.PermissionAuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
