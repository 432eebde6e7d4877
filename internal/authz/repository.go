package authz

import (
	"context"

	"github.com/authgate/authgate/internal/db/models"
)

// The engine consumes persistence through these read-only interfaces (plus the
// append-only audit store). Implementations live in internal/db/repo; tests
// provide in-memory fakes. Implementations must return ErrNotFound for missing
// records and respect context cancellation.

// PermissionRepository looks up permission definitions from the catalog.
type PermissionRepository interface {
	// FindByCode returns the permission definition for the given code, or
	// ErrNotFound.
	FindByCode(ctx context.Context, code string) (*models.Permission, error)
}

// PermissionGroupRepository provides access to groups and memberships.
type PermissionGroupRepository interface {
	// FindMembershipsByUser returns the user's group memberships with the
	// group preloaded. Soft-deleted groups are excluded; expiry and active
	// filtering is the resolver's responsibility.
	FindMembershipsByUser(ctx context.Context, userID uint64) ([]models.UserPermissionGroup, error)
	// FindByID returns a single group, or ErrNotFound. Soft-deleted groups
	// are reported as ErrNotFound.
	FindByID(ctx context.Context, id uint) (*models.PermissionGroup, error)
}

// GroupPermissionRepository provides access to group grants.
type GroupPermissionRepository interface {
	// FindByGroupsAndPermission returns every grant for the permission code
	// attached to any of the given groups.
	FindByGroupsAndPermission(ctx context.Context, groupIDs []uint, code string) ([]models.GroupPermission, error)
}

// UserDirectPermissionRepository provides access to direct user grants.
type UserDirectPermissionRepository interface {
	// FindActiveByUserAndPermission returns the user's non-expired direct
	// grants for the permission code.
	FindActiveByUserAndPermission(ctx context.Context, userID uint64, code string) ([]models.UserDirectPermission, error)
}

// AuditLogRepository appends permission check audit entries. There is no
// update or delete operation: the store is append-only by construction.
type AuditLogRepository interface {
	// Append persists one audit entry.
	Append(ctx context.Context, entry *models.PermissionAuditLog) error
}

// Repositories bundles the consumed interfaces for facade construction.
type Repositories struct {
	Permissions  PermissionRepository
	Groups       PermissionGroupRepository
	GroupGrants  GroupPermissionRepository
	DirectGrants UserDirectPermissionRepository
}
