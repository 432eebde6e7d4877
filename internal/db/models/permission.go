package models

import "time"

// Permission represents a permission definition in the authorization catalog.
// Permissions are immutable once created: the hot path only ever reads them by
// code. They are referenced by code (never by ID) from group grants and direct
// user grants.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey"`
	// Code is the unique permission identifier in module.resource.action format
	// (e.g., "sales.order.create").
	Code string `gorm:"unique;size:100;not null"`
	// Module is the top-level module this permission belongs to (e.g., "sales", "admin").
	Module string `gorm:"size:50;not null"`
	// Resource is the resource this permission applies to (e.g., "order", "group").
	Resource string `gorm:"size:100;not null"`
	// Action is the action allowed on the resource (e.g., "create", "read", "update", "delete").
	Action string `gorm:"size:50;not null"`
	// Description provides a human-readable explanation of what this permission grants.
	Description string `gorm:"size:255"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Permission model.
// This overrides GORM's default pluralized table naming.
func (Permission) TableName() string {
	return "permissions"
}
