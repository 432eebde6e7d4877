package authz

import (
	"context"
	"sync"

	"github.com/authgate/authgate/internal/db/models"
)

// In-memory repository fakes. The engine is exercised against these so the
// decision semantics are tested without any persistence dependency.

type fakePermissionRepo struct {
	codes map[string]models.Permission
	err   error
}

func (f *fakePermissionRepo) FindByCode(_ context.Context, code string) (*models.Permission, error) {
	if f.err != nil {
		return nil, f.err
	}

	p, ok := f.codes[code]
	if !ok {
		return nil, ErrNotFound
	}

	return &p, nil
}

type fakeGroupRepo struct {
	memberships map[uint64][]models.UserPermissionGroup
	groups      map[uint]models.PermissionGroup
	err         error
}

func (f *fakeGroupRepo) FindMembershipsByUser(_ context.Context, userID uint64) ([]models.UserPermissionGroup, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.memberships[userID], nil
}

func (f *fakeGroupRepo) FindByID(_ context.Context, id uint) (*models.PermissionGroup, error) {
	if f.err != nil {
		return nil, f.err
	}

	g, ok := f.groups[id]
	if !ok {
		return nil, ErrNotFound
	}

	return &g, nil
}

type fakeGroupGrantRepo struct {
	grants []models.GroupPermission
	err    error
}

func (f *fakeGroupGrantRepo) FindByGroupsAndPermission(_ context.Context, groupIDs []uint, code string) ([]models.GroupPermission, error) {
	if f.err != nil {
		return nil, f.err
	}

	wanted := make(map[uint]struct{}, len(groupIDs))
	for _, id := range groupIDs {
		wanted[id] = struct{}{}
	}

	var out []models.GroupPermission

	for _, g := range f.grants {
		if _, ok := wanted[g.GroupID]; ok && g.PermissionCode == code {
			out = append(out, g)
		}
	}

	return out, nil
}

type fakeDirectGrantRepo struct {
	grants []models.UserDirectPermission
	err    error
}

func (f *fakeDirectGrantRepo) FindActiveByUserAndPermission(_ context.Context, userID uint64, code string) ([]models.UserDirectPermission, error) {
	if f.err != nil {
		return nil, f.err
	}

	var out []models.UserDirectPermission

	for _, g := range f.grants {
		if g.UserID == userID && g.PermissionCode == code {
			out = append(out, g)
		}
	}

	return out, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []models.PermissionAuditLog
	err     error
}

func (f *fakeAuditRepo) Append(_ context.Context, entry *models.PermissionAuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.entries = append(f.entries, *entry)

	return nil
}

func (f *fakeAuditRepo) all() []models.PermissionAuditLog {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.PermissionAuditLog, len(f.entries))
	copy(out, f.entries)

	return out
}
