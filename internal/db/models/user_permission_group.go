package models

import "time"

// UserPermissionGroup represents a user's membership in a permission group.
// Memberships may carry an expiry; expired memberships are excluded from
// resolution as of evaluation time.
type UserPermissionGroup struct {
	// ID is the unique identifier for the membership.
	ID uint `gorm:"primaryKey"`
	// UserID is the member user.
	UserID uint64 `gorm:"not null;uniqueIndex:idx_user_group"`
	// User is the associated user (loaded via foreign key).
	// When a user is deleted, all their memberships are removed (CASCADE).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// GroupID is the group the user belongs to.
	GroupID uint `gorm:"not null;uniqueIndex:idx_user_group"`
	// Group is the associated group (loaded via foreign key).
	// When a group is hard-deleted, its memberships are removed (CASCADE).
	Group PermissionGroup `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	// GrantedBy is the user that created this membership, for audit purposes.
	GrantedBy *uint64
	// ExpiresAt is the optional point in time after which the membership no
	// longer contributes to authorization. Nil means it never expires.
	ExpiresAt *time.Time `gorm:"index"`
	// JoinedAt is the timestamp the user joined the group.
	JoinedAt time.Time `gorm:"not null"`
	// CreatedAt is the timestamp when the row was created (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the UserPermissionGroup model.
// This overrides GORM's default pluralized table naming.
func (UserPermissionGroup) TableName() string {
	return "user_permission_groups"
}
