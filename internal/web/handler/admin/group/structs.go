package group

// groupInput is the JSON body for creating or updating a permission group.
type groupInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"required,max=100,lowercase"`
	Description string `json:"description" validate:"max=500"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
	Priority    int    `json:"priority"`
	IsActive    *bool  `json:"is_active"`
	ParentID    *uint  `json:"parent_id"`
	TenantID    *uint  `json:"tenant_id"`
}

// memberInput is the JSON body for adding a user to a group.
type memberInput struct {
	UserID uint64 `json:"user_id" validate:"required"`
	// ExpiresAt is an optional RFC 3339 timestamp after which the
	// membership no longer contributes permissions.
	ExpiresAt string `json:"expires_at"`
}

// grantInput is the JSON body for attaching a permission grant to a group.
type grantInput struct {
	PermissionCode string         `json:"permission_code" validate:"required"`
	Effect         string         `json:"effect" validate:"required,oneof=allow deny"`
	Conditions     map[string]any `json:"conditions"`
}
