package authz

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/authgate/authgate/internal/db/models"
)

// ResolvedGroup is a group that contributes to a user's authorization,
// together with the membership chain it was reached through. The path exists
// for audit and debugging only; priority is a flat property of the group, not
// cumulative through the chain.
type ResolvedGroup struct {
	Group models.PermissionGroup
	// Path lists group slugs from the directly-joined group up to this group.
	Path []string
}

// HierarchyResolver computes the closed set of permission groups a user
// belongs to, expanded transitively through parent links.
type HierarchyResolver struct {
	groups PermissionGroupRepository
}

// NewHierarchyResolver creates a resolver over the given group repository.
func NewHierarchyResolver(groups PermissionGroupRepository) *HierarchyResolver {
	return &HierarchyResolver{groups: groups}
}

// ResolveGroups returns the deduplicated set of active groups the user
// belongs to as of now, directly or through ancestors.
//
// Expired memberships and inactive groups are filtered out. The parent chain
// of each remaining group is walked upward until a nil parent, a missing
// parent, or a cycle. A cycle is treated as if the chain terminated: group
// hierarchy corruption must never crash authorization, so the partial chain
// gathered so far is kept and a warning is logged.
func (r *HierarchyResolver) ResolveGroups(ctx context.Context, userID uint64, now time.Time) ([]ResolvedGroup, error) {
	memberships, err := r.groups.FindMembershipsByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "find group memberships")
	}

	var (
		resolved []ResolvedGroup
		seen     = make(map[uint]struct{})
	)

	for _, m := range memberships {
		if m.ExpiresAt != nil && m.ExpiresAt.Before(now) {
			continue
		}

		if !m.Group.IsActive {
			continue
		}

		path := []string{m.Group.Slug}

		if _, dup := seen[m.Group.ID]; !dup {
			seen[m.Group.ID] = struct{}{}
			resolved = append(resolved, ResolvedGroup{Group: m.Group, Path: append([]string(nil), path...)})
		}

		ancestors, err := r.ascend(ctx, m.Group, path)
		if err != nil {
			return nil, err
		}

		for _, a := range ancestors {
			if _, dup := seen[a.Group.ID]; dup {
				continue
			}

			seen[a.Group.ID] = struct{}{}
			resolved = append(resolved, a)
		}
	}

	return resolved, nil
}

// ascend walks the parent chain of a group, collecting every active ancestor.
// The visited set guards against cycles in corrupted hierarchies.
func (r *HierarchyResolver) ascend(ctx context.Context, group models.PermissionGroup, path []string) ([]ResolvedGroup, error) {
	var (
		out     []ResolvedGroup
		visited = map[uint]struct{}{group.ID: {}}
		current = group
	)

	for current.ParentID != nil {
		parentID := *current.ParentID

		if _, looped := visited[parentID]; looped {
			log.Warn().
				Uint("group_id", group.ID).
				Uint("cycle_at", parentID).
				Msg("cycle detected in permission group hierarchy; stopping ascent")
			metricGroupCycles.Inc()

			break
		}

		parent, err := r.groups.FindByID(ctx, parentID)
		if errors.Is(err, ErrNotFound) {
			// Parent was soft-deleted; treat the chain as terminated.
			break
		}

		if err != nil {
			return nil, errors.Wrap(err, "find parent group")
		}

		visited[parentID] = struct{}{}
		path = append(path, parent.Slug)

		if parent.IsActive {
			out = append(out, ResolvedGroup{Group: *parent, Path: append([]string(nil), path...)})
		}

		current = *parent
	}

	return out, nil
}
