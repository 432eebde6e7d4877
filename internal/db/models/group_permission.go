package models

import (
	"time"

	"gorm.io/datatypes"
)

// GrantEffect is the effect a grant contributes to a decision.
type GrantEffect string

const (
	// GrantEffectAllow marks a grant that permits the permission.
	GrantEffectAllow GrantEffect = "allow"
	// GrantEffectDeny marks a grant that explicitly forbids the permission.
	// A matching deny always wins over any number of matching allows.
	GrantEffectDeny GrantEffect = "deny"
)

// GroupPermission links a permission group to a permission with an effect and
// optional attribute conditions. Every member of the group (and of its
// descendant groups) is subject to this grant.
type GroupPermission struct {
	// ID is the unique identifier for the grant.
	ID uint `gorm:"primaryKey"`
	// GroupID is the group this grant is attached to.
	GroupID uint `gorm:"not null;uniqueIndex:idx_group_perm_effect"`
	// Group is the associated group (loaded via foreign key).
	// When a group is hard-deleted its grants are removed (CASCADE).
	Group PermissionGroup `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	// PermissionCode references the permission by its catalog code.
	PermissionCode string `gorm:"size:100;not null;uniqueIndex:idx_group_perm_effect;index"`
	// Effect is "allow" or "deny".
	Effect GrantEffect `gorm:"type:varchar(10);not null;default:'allow';uniqueIndex:idx_group_perm_effect"`
	// Conditions is an optional attribute-equality map (e.g. {"department":"hr"}).
	// The grant applies only when every pair is present and equal in the
	// request context. Empty means unconditional.
	Conditions datatypes.JSONMap `gorm:"type:json"`
	// CreatedAt is the timestamp when the grant was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the grant was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the GroupPermission model.
// This overrides GORM's default pluralized table naming.
func (GroupPermission) TableName() string {
	return "group_permissions"
}
