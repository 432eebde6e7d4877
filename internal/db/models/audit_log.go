package models

import "time"

// AuditDecision is the recorded outcome of a permission check.
type AuditDecision string

const (
	// AuditDecisionAllowed records that the check was allowed.
	AuditDecisionAllowed AuditDecision = "allowed"
	// AuditDecisionDenied records that the check was denied.
	AuditDecisionDenied AuditDecision = "denied"
)

// PermissionAuditLog is a write-once record of a single permission check.
// Rows are append-only: no update or delete operation exists on this table
// anywhere in the codebase.
type PermissionAuditLog struct {
	// ID is the unique identifier for the audit entry.
	ID uint64 `gorm:"primaryKey"`
	// CheckID is the unique identifier of the check that produced this entry.
	CheckID string `gorm:"size:36;not null;index"`
	// UserID is the actor whose permission was checked.
	UserID uint64 `gorm:"not null;index"`
	// TenantID is the tenant scope of the check, if any.
	TenantID *uint
	// PermissionCode is the permission that was checked.
	PermissionCode string `gorm:"size:100;not null;index"`
	// Resource is the resource identifier supplied by the caller, if any.
	Resource string `gorm:"size:255"`
	// IP is the caller's network address.
	IP string `gorm:"size:45"`
	// UserAgent is the caller's user agent string.
	UserAgent string `gorm:"size:255"`
	// Endpoint is the API endpoint that triggered the check.
	Endpoint string `gorm:"size:255"`
	// Decision is "allowed" or "denied".
	Decision AuditDecision `gorm:"type:varchar(10);not null;index"`
	// Reason is the human-readable reason produced by the decision evaluator.
	Reason string `gorm:"size:255"`
	// CreatedAt is the timestamp of the check (managed by GORM).
	CreatedAt time.Time `gorm:"index"`
}

// TableName specifies the database table name for the PermissionAuditLog model.
// This overrides GORM's default pluralized table naming.
func (PermissionAuditLog) TableName() string {
	return "permission_audit_logs"
}
