package authz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/internal/db/models"
)

func uintPtr(v uint) *uint { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func membership(userID uint64, group models.PermissionGroup, expiresAt *time.Time) models.UserPermissionGroup {
	return models.UserPermissionGroup{
		UserID:    userID,
		GroupID:   group.ID,
		Group:     group,
		ExpiresAt: expiresAt,
		JoinedAt:  time.Now(),
	}
}

func activeGroup(id uint, slug string, parentID *uint) models.PermissionGroup {
	return models.PermissionGroup{
		ID:       id,
		Name:     slug,
		Slug:     slug,
		IsActive: true,
		ParentID: parentID,
	}
}

func resolvedIDs(groups []ResolvedGroup) []uint {
	out := make([]uint, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Group.ID)
	}

	return out
}

func TestResolveGroups_DirectMembership(t *testing.T) {
	g1 := activeGroup(1, "editors", nil)

	repo := &fakeGroupRepo{
		memberships: map[uint64][]models.UserPermissionGroup{
			7: {membership(7, g1, nil)},
		},
		groups: map[uint]models.PermissionGroup{1: g1},
	}

	resolved, err := NewHierarchyResolver(repo).ResolveGroups(context.Background(), 7, time.Now())
	require.NoError(t, err)

	assert.Equal(t, []uint{1}, resolvedIDs(resolved))
	assert.Equal(t, []string{"editors"}, resolved[0].Path)
}

func TestResolveGroups_AscendsToAncestors(t *testing.T) {
	// child -> parent -> grandparent; membership only in child.
	grandparent := activeGroup(3, "org", nil)
	parent := activeGroup(2, "department", uintPtr(3))
	child := activeGroup(1, "team", uintPtr(2))

	repo := &fakeGroupRepo{
		memberships: map[uint64][]models.UserPermissionGroup{
			7: {membership(7, child, nil)},
		},
		groups: map[uint]models.PermissionGroup{1: child, 2: parent, 3: grandparent},
	}

	resolved, err := NewHierarchyResolver(repo).ResolveGroups(context.Background(), 7, time.Now())
	require.NoError(t, err)

	assert.ElementsMatch(t, []uint{1, 2, 3}, resolvedIDs(resolved))

	// The grandparent is reached through the full chain, recorded for audit.
	for _, g := range resolved {
		if g.Group.ID == 3 {
			assert.Equal(t, []string{"team", "department", "org"}, g.Path)
		}
	}
}

func TestResolveGroups_ExpiredMembershipExcluded(t *testing.T) {
	// The group itself is active; only the membership is expired.
	g1 := activeGroup(1, "editors", nil)
	now := time.Now()

	repo := &fakeGroupRepo{
		memberships: map[uint64][]models.UserPermissionGroup{
			7: {membership(7, g1, timePtr(now.Add(-time.Second)))},
		},
		groups: map[uint]models.PermissionGroup{1: g1},
	}

	resolved, err := NewHierarchyResolver(repo).ResolveGroups(context.Background(), 7, now)
	require.NoError(t, err)
	assert.Empty(t, resolved)
}

func TestResolveGroups_FutureExpiryIncluded(t *testing.T) {
	g1 := activeGroup(1, "editors", nil)
	now := time.Now()

	repo := &fakeGroupRepo{
		memberships: map[uint64][]models.UserPermissionGroup{
			7: {membership(7, g1, timePtr(now.Add(time.Hour)))},
		},
		groups: map[uint]models.PermissionGroup{1: g1},
	}

	resolved, err := NewHierarchyResolver(repo).ResolveGroups(context.Background(), 7, now)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, resolvedIDs(resolved))
}

func TestResolveGroups_InactiveGroupExcluded(t *testing.T) {
	inactive := activeGroup(1, "disabled", nil)
	inactive.IsActive = false

	repo := &fakeGroupRepo{
		memberships: map[uint64][]models.UserPermissionGroup{
			7: {membership(7, inactive, nil)},
		},
		groups: map[uint]models.PermissionGroup{1: inactive},
	}

	resolved, err := NewHierarchyResolver(repo).ResolveGroups(context.Background(), 7, time.Now())
	require.NoError(t, err)
	assert.Empty(t, resolved)
}

func TestResolveGroups_InactiveAncestorSkippedButChainContinues(t *testing.T) {
	grandparent := activeGroup(3, "org", nil)
	parent := activeGroup(2, "department", uintPtr(3))
	parent.IsActive = false
	child := activeGroup(1, "team", uintPtr(2))

	repo := &fakeGroupRepo{
		memberships: map[uint64][]models.UserPermissionGroup{
			7: {membership(7, child, nil)},
		},
		groups: map[uint]models.PermissionGroup{1: child, 2: parent, 3: grandparent},
	}

	resolved, err := NewHierarchyResolver(repo).ResolveGroups(context.Background(), 7, time.Now())
	require.NoError(t, err)

	// The inactive department is skipped but the chain keeps ascending to
	// the active org above it.
	assert.ElementsMatch(t, []uint{1, 3}, resolvedIDs(resolved))
}

func TestResolveGroups_CycleTerminates(t *testing.T) {
	// A -> parent B -> parent A: corrupted hierarchy must not loop or crash.
	a := activeGroup(1, "a", uintPtr(2))
	b := activeGroup(2, "b", uintPtr(1))

	repo := &fakeGroupRepo{
		memberships: map[uint64][]models.UserPermissionGroup{
			7: {membership(7, a, nil)},
		},
		groups: map[uint]models.PermissionGroup{1: a, 2: b},
	}

	done := make(chan struct{})

	var (
		resolved []ResolvedGroup
		err      error
	)

	go func() {
		resolved, err = NewHierarchyResolver(repo).ResolveGroups(context.Background(), 7, time.Now())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("hierarchy resolution did not terminate on cycle")
	}

	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{1, 2}, resolvedIDs(resolved))
}

func TestResolveGroups_SelfParentCycleTerminates(t *testing.T) {
	a := activeGroup(1, "a", uintPtr(1))

	repo := &fakeGroupRepo{
		memberships: map[uint64][]models.UserPermissionGroup{
			7: {membership(7, a, nil)},
		},
		groups: map[uint]models.PermissionGroup{1: a},
	}

	resolved, err := NewHierarchyResolver(repo).ResolveGroups(context.Background(), 7, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, resolvedIDs(resolved))
}

func TestResolveGroups_DeletedParentTerminatesChain(t *testing.T) {
	// Parent id 2 does not resolve (soft-deleted); the chain simply ends.
	child := activeGroup(1, "team", uintPtr(2))

	repo := &fakeGroupRepo{
		memberships: map[uint64][]models.UserPermissionGroup{
			7: {membership(7, child, nil)},
		},
		groups: map[uint]models.PermissionGroup{1: child},
	}

	resolved, err := NewHierarchyResolver(repo).ResolveGroups(context.Background(), 7, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, resolvedIDs(resolved))
}

func TestResolveGroups_SharedAncestorDeduplicated(t *testing.T) {
	// Two sibling memberships sharing one parent: the parent appears once.
	parent := activeGroup(3, "org", nil)
	left := activeGroup(1, "left", uintPtr(3))
	right := activeGroup(2, "right", uintPtr(3))

	repo := &fakeGroupRepo{
		memberships: map[uint64][]models.UserPermissionGroup{
			7: {membership(7, left, nil), membership(7, right, nil)},
		},
		groups: map[uint]models.PermissionGroup{1: left, 2: right, 3: parent},
	}

	resolved, err := NewHierarchyResolver(repo).ResolveGroups(context.Background(), 7, time.Now())
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{1, 2, 3}, resolvedIDs(resolved))
}

func TestResolveGroups_NoMemberships(t *testing.T) {
	repo := &fakeGroupRepo{}

	resolved, err := NewHierarchyResolver(repo).ResolveGroups(context.Background(), 7, time.Now())
	require.NoError(t, err)
	assert.Empty(t, resolved)
}
