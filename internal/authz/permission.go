package authz

// Permission is an atomic capability tag.
type Permission string

const (
	PermTaskCreate Permission = "task:create"
	PermTaskRead   Permission = "task:read"
	PermTaskUpdate Permission = "task:update"
	PermTaskDelete Permission = "task:delete"

	PermOrgManage Permission = "org:manage"
	PermOrgView   Permission = "org:view"

	PermUserManage Permission = "user:manage"
	PermUserView   Permission = "user:view"

	PermAuditView Permission = "audit:view"
)

var (
	ownerPermissions = []Permission{
		PermTaskCreate, PermTaskRead, PermTaskUpdate, PermTaskDelete,
		PermOrgManage, PermOrgView,
		PermUserManage, PermUserView,
		PermAuditView,
	}
	adminPermissions = []Permission{
		PermTaskCreate, PermTaskRead, PermTaskUpdate, PermTaskDelete,
		PermOrgView,
		PermUserView,
		PermAuditView,
	}
	viewerPermissions = []Permission{
		PermTaskRead,
		PermOrgView,
	}
)

// PermissionsFor returns the static permission set granted to role.
// The returned slice is a copy; absent or unknown roles get an empty set.
func PermissionsFor(role Role) []Permission {
	var granted []Permission
	switch role {
	case RoleOwner:
		granted = ownerPermissions
	case RoleAdmin:
		granted = adminPermissions
	case RoleViewer:
		granted = viewerPermissions
	case RoleNone:
		return []Permission{}
	default:
		return []Permission{}
	}
	out := make([]Permission, len(granted))
	copy(out, granted)
	return out
}

// Has reports whether role is granted perm.
func Has(role Role, perm Permission) bool {
	for _, p := range PermissionsFor(role) {
		if p == perm {
			return true
		}
	}
	return false
}

// HasAll reports whether role is granted every required permission.
// An empty requirement is always satisfied.
func HasAll(role Role, required ...Permission) bool {
	for _, perm := range required {
		if !Has(role, perm) {
			return false
		}
	}
	return true
}
