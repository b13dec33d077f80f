package authz

import "fmt"

// Role is the persisted role string of an active user.
type Role string

const (
	RoleNone   Role = ""
	RoleViewer Role = "viewer"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

// Roles lists every assignable role, highest first.
var Roles = []Role{RoleOwner, RoleAdmin, RoleViewer}

// Rank returns the hierarchy level of a role. Unknown and absent roles rank 0.
func Rank(role Role) int {
	switch role {
	case RoleOwner:
		return 3
	case RoleAdmin:
		return 2
	case RoleViewer:
		return 1
	default:
		return 0
	}
}

// SatisfiesFloor reports whether actor is at least as senior as required.
func SatisfiesFloor(actor, required Role) bool {
	return Rank(actor) >= Rank(required)
}

// Valid reports whether r is one of the assignable roles.
func (r Role) Valid() bool {
	return Rank(r) > 0
}

// ParseRole converts a stored or requested value into a Role.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.Valid() {
		return RoleNone, fmt.Errorf("authz: unknown role %q", s)
	}
	return role, nil
}
