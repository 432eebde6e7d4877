package authz

import (
	"fmt"
	"sort"
)

// Reason strings produced by Decide. The exact wording is part of the audit
// contract; callers and tests match on these.
const (
	// ReasonNoMatch is used when no grant matches the request context.
	ReasonNoMatch = "no matching permission"
	// reasonDenyFormat cites the source of the winning deny.
	reasonDenyFormat = "explicit deny (%s)"
	// reasonAllowFormat cites the source of the winning allow.
	reasonAllowFormat = "granted via %s"
)

// Decision is the binary outcome of a permission check.
type Decision struct {
	// Allowed is true when the check passed.
	Allowed bool `json:"allowed"`
	// Reason is the human-readable explanation for the outcome.
	Reason string `json:"reason"`
}

// Decide applies the canonical precedence rules over aggregated grants. It is
// the single security-relevant conflict-resolution function in the system and
// the only place that compares effects.
//
// Rules, in order:
//  1. Partition grants into those whose conditions match the request context.
//     A grant with no conditions always matches.
//  2. No matching grant: deny with ReasonNoMatch.
//  3. Any matching deny wins unconditionally over every matching allow.
//     Group priority does NOT break an allow/deny tie; deny always wins. This
//     holds for direct grants too: a direct deny overrides a group allow and
//     a group deny overrides a direct allow.
//  4. Otherwise allow, citing the matching allow with the highest source
//     priority (cosmetic tie-break only).
//
// The function is pure: no clock, no I/O, no dependency on input order beyond
// the deterministic tie-breaks below.
func Decide(grants []Grant, reqCtx map[string]string) Decision {
	var matching []Grant

	for _, g := range grants {
		if g.Conditions.Matches(reqCtx) {
			matching = append(matching, g)
		}
	}

	if len(matching) == 0 {
		return Decision{Allowed: false, Reason: ReasonNoMatch}
	}

	// Deterministic winner selection independent of aggregation order: prefer
	// higher source priority, then direct over group, then source name.
	sort.SliceStable(matching, func(i, j int) bool {
		a, b := matching[i], matching[j]
		if a.SourcePriority != b.SourcePriority {
			return a.SourcePriority > b.SourcePriority
		}
		if a.Source != b.Source {
			return a.Source == SourceDirect
		}
		return a.SourceName < b.SourceName
	})

	for _, g := range matching {
		if g.Effect == EffectDeny {
			return Decision{Allowed: false, Reason: fmt.Sprintf(reasonDenyFormat, g.SourceLabel())}
		}
	}

	return Decision{Allowed: true, Reason: fmt.Sprintf(reasonAllowFormat, matching[0].SourceLabel())}
}
