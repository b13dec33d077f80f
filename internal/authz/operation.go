package authz

// Operation describes what a call site requires before any resource is touched.
// Build it with NewOperation and the Require methods; the zero value requires nothing.
type Operation struct {
	name        string
	roles       []Role
	permissions []Permission
	active      bool
	scope       *OrgScope
}

// NewOperation starts a descriptor for the named operation.
func NewOperation(name string) Operation {
	return Operation{name: name}
}

// RequireRoles admits actors satisfying the floor of at least one role.
func (o Operation) RequireRoles(roles ...Role) Operation {
	o.roles = append(append([]Role(nil), o.roles...), roles...)
	return o
}

// RequirePermissions admits actors granted every listed permission.
func (o Operation) RequirePermissions(perms ...Permission) Operation {
	o.permissions = append(append([]Permission(nil), o.permissions...), perms...)
	return o
}

// RequireActive blocks pending and rejected accounts.
func (o Operation) RequireActive() Operation {
	o.active = true
	return o
}

// WithOrgScope scopes the operation to the organization named by the request.
func (o Operation) WithOrgScope(scope OrgScope) Operation {
	o.scope = &scope
	return o
}

// Name returns the operation name used in logs and metrics.
func (o Operation) Name() string { return o.name }

// Roles returns the declared role floors.
func (o Operation) Roles() []Role { return append([]Role(nil), o.roles...) }

// Permissions returns the declared permissions.
func (o Operation) Permissions() []Permission {
	return append([]Permission(nil), o.permissions...)
}

// Scope returns the org scope policy, if declared.
func (o Operation) Scope() (OrgScope, bool) {
	if o.scope == nil {
		return OrgScope{}, false
	}
	return *o.scope, true
}
