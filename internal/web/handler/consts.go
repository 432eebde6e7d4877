package handler

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// RouterRootPath is the relative root path inside a route group.
	RouterRootPath = "/"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"

	// DefaultPageSize for paginated list endpoints.
	DefaultPageSize = 25
	// MaxPageSize clamps the page size upper bound.
	MaxPageSize = 100

	// QueryPage is the query parameter name for the current page index.
	QueryPage = "page"
	// QueryPageSize is the query parameter name for the page size.
	QueryPageSize = "pageSize"
	// QuerySearch is the query parameter name for the search term.
	QuerySearch = "search"

	// ErrInvalidID is returned when the provided id parameter is invalid or non-positive.
	ErrInvalidID = "invalid id"
	// ErrInternal is the generic message for unexpected failures.
	ErrInternal = "internal server error"
)
