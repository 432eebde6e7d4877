package user

// userInput is the JSON body for creating or updating a user.
type userInput struct {
	Username  string `json:"username" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Active    *bool  `json:"active"`
	TenantID  *uint  `json:"tenant_id"`
}

// grantInput is the JSON body for attaching a direct permission grant to a user.
type grantInput struct {
	PermissionCode string         `json:"permission_code" validate:"required"`
	Effect         string         `json:"effect" validate:"required,oneof=allow deny"`
	Conditions     map[string]any `json:"conditions"`
	// ExpiresAt is an optional RFC 3339 timestamp after which the grant no
	// longer contributes.
	ExpiresAt string `json:"expires_at"`
}
