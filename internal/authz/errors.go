package authz

import "errors"

var (
	// ErrNotAuthenticated is returned when a check is attempted without an
	// identity. It is rejected before the engine runs.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrInvalidRequest is returned when a check request is structurally
	// invalid (e.g. empty permission code).
	ErrInvalidRequest = errors.New("invalid check request")

	// ErrLookupFailure wraps any repository failure during a check. It is
	// propagated to the caller distinctly from a deny decision so that the
	// caller can choose a fail-open or fail-closed policy. The middleware in
	// this package fails closed.
	ErrLookupFailure = errors.New("authorization lookup failure")

	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("record not found")
)
