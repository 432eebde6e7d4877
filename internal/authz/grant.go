package authz

import (
	"fmt"
	"strconv"
	"time"
)

// Effect is the contribution of a grant to a decision.
type Effect string

const (
	// EffectAllow permits the permission when the grant matches.
	EffectAllow Effect = "allow"
	// EffectDeny forbids the permission when the grant matches, regardless of
	// how many allow grants also match.
	EffectDeny Effect = "deny"
)

// Source identifies where a grant came from.
type Source string

const (
	// SourceGroup marks a grant inherited through a permission group.
	SourceGroup Source = "group"
	// SourceDirect marks a grant assigned straight to the user.
	SourceDirect Source = "direct"
)

// Conditions is an attribute-equality constraint set. A grant carrying
// conditions applies only if every key/value pair is present and equal in the
// request context. An empty set always matches.
type Conditions map[string]string

// Matches reports whether every condition is present and equal in the request
// context. A superset context does not invalidate a match.
func (c Conditions) Matches(reqCtx map[string]string) bool {
	for key, want := range c {
		got, ok := reqCtx[key]
		if !ok || got != want {
			return false
		}
	}

	return true
}

// ParseConditions converts a stored attribute map into comparable Conditions.
// Scalar JSON values (strings, numbers, booleans) are stringified; a nested
// object or array makes the stored grant malformed and returns an error so the
// aggregator can skip the grant instead of crashing the decision path.
func ParseConditions(raw map[string]any) (Conditions, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	out := make(Conditions, len(raw))

	for key, value := range raw {
		switch v := value.(type) {
		case string:
			out[key] = v
		case bool:
			out[key] = strconv.FormatBool(v)
		case float64:
			out[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			out[key] = strconv.Itoa(v)
		case int64:
			out[key] = strconv.FormatInt(v, 10)
		case nil:
			return nil, fmt.Errorf("condition %q has null value", key)
		default:
			return nil, fmt.Errorf("condition %q has non-scalar value of type %T", key, value)
		}
	}

	return out, nil
}

// Grant is a single (permission, effect, conditions, expiry, source) tuple
// contributing to a decision.
type Grant struct {
	// Effect is "allow" or "deny".
	Effect Effect
	// Conditions constrain when the grant applies. Nil means unconditional.
	Conditions Conditions
	// Source is "group" or "direct".
	Source Source
	// SourceName is the slug of the granting group, or empty for direct grants.
	SourceName string
	// SourcePriority is the priority of the granting group. Advisory only: it
	// selects which allow is cited in the reason, never the outcome.
	SourcePriority int
	// ExpiresAt is the optional expiry of the grant. Expired grants are
	// excluded during aggregation, so the evaluator never sees them.
	ExpiresAt *time.Time
}

// SourceLabel is the human-readable origin used in decision reasons.
func (g Grant) SourceLabel() string {
	if g.Source == SourceDirect {
		return "direct grant"
	}

	return fmt.Sprintf("group %q", g.SourceName)
}

// Expired reports whether the grant is expired as of now.
func (g Grant) Expired(now time.Time) bool {
	return g.ExpiresAt != nil && g.ExpiresAt.Before(now)
}
