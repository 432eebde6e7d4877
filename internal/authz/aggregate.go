package authz

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Aggregator collects every grant applicable to a user for a target
// permission: one stream from group grants, one from direct user grants.
//
// Expiry filtering happens here, not in the evaluator, so that Decide stays
// free of time logic. Grants whose stored conditions cannot be parsed are
// excluded (treated as non-matching) and logged as a data-quality warning;
// they never crash the decision path.
type Aggregator struct {
	groupGrants  GroupPermissionRepository
	directGrants UserDirectPermissionRepository
}

// NewAggregator creates an aggregator over the two grant repositories.
func NewAggregator(groupGrants GroupPermissionRepository, directGrants UserDirectPermissionRepository) *Aggregator {
	return &Aggregator{groupGrants: groupGrants, directGrants: directGrants}
}

// CollectGroupGrants returns the grants for code attached to any of the
// resolved groups.
func (a *Aggregator) CollectGroupGrants(ctx context.Context, groups []ResolvedGroup, code string) ([]Grant, error) {
	if len(groups) == 0 {
		return nil, nil
	}

	byID := make(map[uint]ResolvedGroup, len(groups))
	ids := make([]uint, 0, len(groups))

	for _, g := range groups {
		ids = append(ids, g.Group.ID)
		byID[g.Group.ID] = g
	}

	rows, err := a.groupGrants.FindByGroupsAndPermission(ctx, ids, code)
	if err != nil {
		return nil, errors.Wrap(err, "find group grants")
	}

	out := make([]Grant, 0, len(rows))

	for _, row := range rows {
		conditions, err := ParseConditions(row.Conditions)
		if err != nil {
			log.Warn().Err(err).
				Uint("grant_id", row.ID).
				Uint("group_id", row.GroupID).
				Str("permission", row.PermissionCode).
				Msg("skipping malformed group grant")
			metricMalformedGrants.Inc()

			continue
		}

		source := byID[row.GroupID]
		out = append(out, Grant{
			Effect:         Effect(row.Effect),
			Conditions:     conditions,
			Source:         SourceGroup,
			SourceName:     source.Group.Slug,
			SourcePriority: source.Group.Priority,
		})
	}

	return out, nil
}

// CollectDirectGrants returns the user's non-expired direct grants for code
// as of now.
func (a *Aggregator) CollectDirectGrants(ctx context.Context, userID uint64, code string, now time.Time) ([]Grant, error) {
	rows, err := a.directGrants.FindActiveByUserAndPermission(ctx, userID, code)
	if err != nil {
		return nil, errors.Wrap(err, "find direct grants")
	}

	out := make([]Grant, 0, len(rows))

	for _, row := range rows {
		// The repository already excludes expired rows, but re-check against
		// the evaluation clock: the repository and engine clocks are not
		// required to agree.
		if row.ExpiresAt != nil && row.ExpiresAt.Before(now) {
			continue
		}

		conditions, err := ParseConditions(row.Conditions)
		if err != nil {
			log.Warn().Err(err).
				Uint("grant_id", row.ID).
				Uint64("user_id", row.UserID).
				Str("permission", row.PermissionCode).
				Msg("skipping malformed direct grant")
			metricMalformedGrants.Inc()

			continue
		}

		out = append(out, Grant{
			Effect:     Effect(row.Effect),
			Conditions: conditions,
			Source:     SourceDirect,
			ExpiresAt:  row.ExpiresAt,
		})
	}

	return out, nil
}
