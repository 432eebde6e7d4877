package models

import "time"

// TenantStatus represents the lifecycle state of a tenant.
type TenantStatus string

const (
	// TenantStatusActive indicates the tenant is operational.
	TenantStatusActive TenantStatus = "active"
	// TenantStatusInactive indicates the tenant is suspended.
	TenantStatusInactive TenantStatus = "inactive"
)

// Tenant represents an isolated customer scope. Permission groups and users
// may be scoped to a tenant; groups with a nil TenantID are global and visible
// to all tenants.
type Tenant struct {
	// ID is the unique identifier for the tenant.
	ID uint `gorm:"primaryKey"`
	// Name is the display name of the tenant.
	Name string `gorm:"size:100;not null"`
	// Code is the unique short code of the tenant.
	Code string `gorm:"unique;size:50;not null"`
	// Status is "active" or "inactive".
	Status TenantStatus `gorm:"type:varchar(20);not null;default:'active'"`
	// CreatedAt is the timestamp when the tenant was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the tenant was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Tenant model.
// This overrides GORM's default pluralized table naming.
func (Tenant) TableName() string {
	return "tenants"
}
