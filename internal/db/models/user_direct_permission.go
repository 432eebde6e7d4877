package models

import (
	"time"

	"gorm.io/datatypes"
)

// UserDirectPermission grants a permission straight to a user, bypassing the
// group system entirely. Used for one-off exceptions. Direct grants follow the
// same effect/condition semantics as group grants and are evaluated
// identically by the decision engine: a direct deny overrides a group allow
// and vice versa.
type UserDirectPermission struct {
	// ID is the unique identifier for the grant.
	ID uint `gorm:"primaryKey"`
	// UserID is the user this grant applies to.
	UserID uint64 `gorm:"not null;index"`
	// User is the associated user (loaded via foreign key).
	// When a user is deleted, their direct grants are removed (CASCADE).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// PermissionCode references the permission by its catalog code.
	PermissionCode string `gorm:"size:100;not null;index"`
	// Effect is "allow" or "deny".
	Effect GrantEffect `gorm:"type:varchar(10);not null;default:'allow'"`
	// Conditions is an optional attribute-equality map, same semantics as
	// GroupPermission.Conditions.
	Conditions datatypes.JSONMap `gorm:"type:json"`
	// GrantedBy is the user that created this grant, for audit purposes.
	GrantedBy *uint64
	// ExpiresAt is the optional point in time after which the grant no longer
	// contributes to authorization. Nil means it never expires.
	ExpiresAt *time.Time `gorm:"index"`
	// CreatedAt is the timestamp when the grant was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the grant was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the UserDirectPermission model.
// This overrides GORM's default pluralized table naming.
func (UserDirectPermission) TableName() string {
	return "user_direct_permissions"
}
