package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide_NoGrantsIsDeny(t *testing.T) {
	decision := Decide(nil, nil)

	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonNoMatch, decision.Reason)
}

func TestDecide_NoMatchIsDeny(t *testing.T) {
	grants := []Grant{
		{Effect: EffectAllow, Conditions: Conditions{"region": "west"}, Source: SourceGroup, SourceName: "ops"},
	}

	decision := Decide(grants, map[string]string{"region": "east"})

	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonNoMatch, decision.Reason)
}

func TestDecide_SingleAllow(t *testing.T) {
	grants := []Grant{
		{Effect: EffectAllow, Source: SourceGroup, SourceName: "ops"},
	}

	decision := Decide(grants, nil)

	assert.True(t, decision.Allowed)
	assert.Equal(t, `granted via group "ops"`, decision.Reason)
}

func TestDecide_DenyOverridesAllow(t *testing.T) {
	// For any set of matching grants containing at least one deny, the
	// decision must be deny regardless of how many allows exist or their
	// priorities.
	testCases := []struct {
		name   string
		grants []Grant
	}{
		{
			name: "group deny vs group allow",
			grants: []Grant{
				{Effect: EffectAllow, Source: SourceGroup, SourceName: "a", SourcePriority: 100},
				{Effect: EffectDeny, Source: SourceGroup, SourceName: "b"},
			},
		},
		{
			name: "direct deny vs group allow",
			grants: []Grant{
				{Effect: EffectAllow, Source: SourceGroup, SourceName: "a", SourcePriority: 100},
				{Effect: EffectDeny, Source: SourceDirect},
			},
		},
		{
			name: "group deny vs direct allow",
			grants: []Grant{
				{Effect: EffectAllow, Source: SourceDirect},
				{Effect: EffectDeny, Source: SourceGroup, SourceName: "b"},
			},
		},
		{
			name: "deny with lowest priority still wins",
			grants: []Grant{
				{Effect: EffectAllow, Source: SourceGroup, SourceName: "a", SourcePriority: 1000},
				{Effect: EffectAllow, Source: SourceGroup, SourceName: "c", SourcePriority: 500},
				{Effect: EffectDeny, Source: SourceGroup, SourceName: "b", SourcePriority: -10},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			decision := Decide(tc.grants, nil)

			assert.False(t, decision.Allowed)
			assert.Contains(t, decision.Reason, "explicit deny")
		})
	}
}

func TestDecide_DenyReasonCitesSource(t *testing.T) {
	grants := []Grant{
		{Effect: EffectAllow, Source: SourceGroup, SourceName: "editors"},
		{Effect: EffectDeny, Source: SourceGroup, SourceName: "suspended"},
	}

	decision := Decide(grants, nil)

	assert.False(t, decision.Allowed)
	assert.Equal(t, `explicit deny (group "suspended")`, decision.Reason)
}

func TestDecide_ConditionMatchingIsExactSubset(t *testing.T) {
	grant := Grant{
		Effect:     EffectAllow,
		Conditions: Conditions{"a": "1"},
		Source:     SourceGroup,
		SourceName: "ops",
	}

	testCases := []struct {
		name    string
		reqCtx  map[string]string
		allowed bool
	}{
		{name: "exact match", reqCtx: map[string]string{"a": "1"}, allowed: true},
		{name: "superset context still matches", reqCtx: map[string]string{"a": "1", "b": "2"}, allowed: true},
		{name: "wrong value", reqCtx: map[string]string{"a": "2"}, allowed: false},
		{name: "empty context", reqCtx: map[string]string{}, allowed: false},
		{name: "nil context", reqCtx: nil, allowed: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			decision := Decide([]Grant{grant}, tc.reqCtx)

			assert.Equal(t, tc.allowed, decision.Allowed)
		})
	}
}

func TestDecide_UnconditionalGrantAlwaysMatches(t *testing.T) {
	grants := []Grant{
		{Effect: EffectAllow, Source: SourceDirect},
	}

	assert.True(t, Decide(grants, nil).Allowed)
	assert.True(t, Decide(grants, map[string]string{"anything": "goes"}).Allowed)
}

func TestDecide_ConditionedDenyOnlyAppliesWhenMatching(t *testing.T) {
	// A deny constrained to region=west must not affect checks in other
	// regions.
	grants := []Grant{
		{Effect: EffectAllow, Source: SourceGroup, SourceName: "sales", SourcePriority: 10},
		{Effect: EffectDeny, Conditions: Conditions{"region": "west"}, Source: SourceGroup, SourceName: "hq"},
	}

	west := Decide(grants, map[string]string{"region": "west"})
	assert.False(t, west.Allowed)
	assert.Equal(t, `explicit deny (group "hq")`, west.Reason)

	east := Decide(grants, map[string]string{"region": "east"})
	assert.True(t, east.Allowed)
	assert.Equal(t, `granted via group "sales"`, east.Reason)
}

func TestDecide_AllowReasonCitesHighestPrioritySource(t *testing.T) {
	grants := []Grant{
		{Effect: EffectAllow, Source: SourceGroup, SourceName: "interns", SourcePriority: 1},
		{Effect: EffectAllow, Source: SourceGroup, SourceName: "admins", SourcePriority: 50},
	}

	decision := Decide(grants, nil)

	assert.True(t, decision.Allowed)
	assert.Equal(t, `granted via group "admins"`, decision.Reason)
}

func TestDecide_DeterministicRegardlessOfOrder(t *testing.T) {
	forward := []Grant{
		{Effect: EffectAllow, Source: SourceGroup, SourceName: "a", SourcePriority: 5},
		{Effect: EffectAllow, Source: SourceGroup, SourceName: "b", SourcePriority: 5},
		{Effect: EffectDeny, Source: SourceDirect},
	}

	reversed := []Grant{forward[2], forward[1], forward[0]}

	assert.Equal(t, Decide(forward, nil), Decide(reversed, nil))
}

func TestDecide_DirectAllow(t *testing.T) {
	grants := []Grant{
		{Effect: EffectAllow, Source: SourceDirect},
	}

	decision := Decide(grants, nil)

	assert.True(t, decision.Allowed)
	assert.Equal(t, "granted via direct grant", decision.Reason)
}
