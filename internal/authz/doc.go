// Package authz implements the permission resolution engine.
//
// The engine decides whether a user may perform an action by combining
// permissions inherited from hierarchical permission groups, permissions
// granted directly to the user, explicit deny rules, attribute-based
// conditions, and time-bounded grants into a single deterministic decision.
//
// # Components
//
// HierarchyResolver computes the closed set of permission groups a user
// belongs to, expanded transitively through parent links. Expired memberships
// and inactive groups are filtered out; a corrupt parent cycle stops the
// ascent with a warning instead of failing the check.
//
// Aggregator collects every grant applicable to the user for a target
// permission: grants attached to any resolved group, plus non-expired direct
// user grants. Expired grants are excluded at aggregation time, which keeps
// the evaluator free of time logic.
//
// Decide is the single canonical conflict-resolution function. It is pure and
// operates on plain data:
//   - a grant matches when its conditions are an exact subset of the request
//     context (a grant with no conditions always matches)
//   - no matching grant means deny
//   - any matching deny wins over any number of matching allows
//   - otherwise the check is allowed, citing the granting source
//
// Group priority never changes the allow/deny outcome; it only selects which
// of several matching allows is cited in the reason.
//
// Recorder appends one immutable audit row per check. Audit writes happen on a
// background worker and never affect the authorization verdict.
//
// Service is the facade composing the above for one request. Apart from the
// runtime-switchable audit mode it holds no mutable state; CachingChecker
// optionally wraps it with an expiring LRU.
//
// # Error semantics
//
// Repository failures surface as ErrLookupFailure rather than an implicit
// deny, so callers can distinguish operational incidents from security
// events. The provided Fiber middleware fails closed on such errors.
//
// Example usage:
//
//	svc := authz.NewService(authz.Repositories{...}, recorder)
//	decision, err := svc.CheckPermission(ctx, authz.CheckRequest{
//	    UserID:         actorID,
//	    PermissionCode: authz.PermAdminGroups,
//	    Context:        map[string]string{"department": "hr"},
//	})
//
//	app.Get("/admin/groups",
//	    authz.RequirePermission(svc, authz.PermAdminGroups),
//	    handler,
//	)
package authz
