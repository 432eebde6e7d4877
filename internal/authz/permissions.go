package authz

import "strings"

// Permission constants define the built-in permissions in the system.
// Codes follow the module.resource.action convention. These are static
// configuration data: the engine never defines actions at runtime, it only
// resolves grants against this catalog.
const (
	// PermAdminUsers allows managing user accounts.
	PermAdminUsers = "admin.user.manage"
	// PermAdminGroups allows managing permission groups, memberships, and
	// group grants.
	PermAdminGroups = "admin.group.manage"
	// PermAdminDirectGrants allows managing direct user grants.
	PermAdminDirectGrants = "admin.grant.manage"
	// PermAdminPermissionsRead allows listing the permission catalog.
	PermAdminPermissionsRead = "admin.permission.read"
	// PermAdminAuditRead allows reading the permission audit log.
	PermAdminAuditRead = "admin.audit.read"
	// PermAdminSettings allows managing runtime engine settings.
	PermAdminSettings = "admin.setting.manage"
	// PermAuthzCheck allows invoking the check endpoint on behalf of another
	// user (service-to-service authorization).
	PermAuthzCheck = "authz.check.invoke"
)

// Definition is one catalog entry used for seeding.
type Definition struct {
	Code        string
	Description string
}

// Definitions lists every built-in permission. The daemon seeds the catalog
// from this slice at startup; codes already present are left untouched.
var Definitions = []Definition{
	{Code: PermAdminUsers, Description: "Manage user accounts"},
	{Code: PermAdminGroups, Description: "Manage permission groups, memberships and group grants"},
	{Code: PermAdminDirectGrants, Description: "Manage direct user grants"},
	{Code: PermAdminPermissionsRead, Description: "List the permission catalog"},
	{Code: PermAdminAuditRead, Description: "Read the permission audit log"},
	{Code: PermAdminSettings, Description: "Manage runtime engine settings"},
	{Code: PermAuthzCheck, Description: "Invoke permission checks for other principals"},
}

// SplitCode breaks a permission code into its module, resource, and action
// parts. A code with fewer than three segments fills from the left and leaves
// the remainder empty.
func SplitCode(code string) (module, resource, action string) {
	parts := strings.SplitN(code, ".", 3)

	switch len(parts) {
	case 3:
		return parts[0], parts[1], parts[2]
	case 2:
		return parts[0], parts[1], ""
	default:
		return parts[0], "", ""
	}
}
