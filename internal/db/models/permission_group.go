package models

import (
	"time"

	"gorm.io/gorm"
)

// PermissionGroup represents a hierarchical permission group.
// Groups form a tree via ParentID (a group has at most one parent); members of
// a group inherit the grants of every ancestor. Groups are soft-deleted and
// never hard-deleted while referenced.
type PermissionGroup struct {
	// ID is the unique identifier for the group.
	ID uint `gorm:"primaryKey"`
	// Name is the display name of the group as it appears in the system.
	Name string `gorm:"size:100;not null"`
	// Slug is the URL-safe identifier, unique per tenant.
	Slug string `gorm:"size:100;not null;uniqueIndex:idx_tenant_slug"`
	// Description provides a human-readable explanation of the group's purpose.
	Description string `gorm:"size:255"`
	// IsSystem indicates if this is a built-in group that cannot be deleted.
	IsSystem bool `gorm:"default:false"`
	// IsActive indicates whether the group currently participates in
	// authorization. Inactive groups are skipped during resolution.
	IsActive bool `gorm:"default:true"`
	// Color is a cosmetic display color for UIs; it has no authorization effect.
	Color string `gorm:"size:20"`
	// Priority is an integer tie-break among allow grants (higher wins).
	// It never overrides a deny.
	Priority int `gorm:"default:0"`
	// ParentID is the optional parent group, forming a tree (not a DAG).
	ParentID *uint `gorm:"index"`
	// Parent is the associated parent group (loaded via foreign key).
	Parent *PermissionGroup `gorm:"foreignKey:ParentID"`
	// TenantID scopes the group to a tenant. Nil means a global/system group
	// visible to all tenants.
	TenantID *uint `gorm:"uniqueIndex:idx_tenant_slug;index"`
	// CreatedAt is the timestamp when the group was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the group was last updated (managed by GORM).
	UpdatedAt time.Time
	// DeletedAt is the soft delete timestamp (managed by GORM).
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the database table name for the PermissionGroup model.
// This overrides GORM's default pluralized table naming.
func (PermissionGroup) TableName() string {
	return "permission_groups"
}
