package authz

// OrgNode is the slice of the organization hierarchy needed for scope checks.
type OrgNode struct {
	ID       uint64
	ParentID *uint64
	ChildIDs []uint64
}

// Actor is the authenticated identity an operation is evaluated for.
type Actor struct {
	ID             uint64
	Email          string
	Role           Role
	Status         Status
	OrganizationID *uint64

	// Organization is the hierarchy snapshot of the actor's organization.
	// Nil means it was not loaded; parent and child scope checks then deny.
	Organization *OrgNode
}

// InOrganization reports whether the actor belongs to orgID.
func (a Actor) InOrganization(orgID uint64) bool {
	return a.OrganizationID != nil && *a.OrganizationID == orgID
}

// Active reports whether the account has been approved.
func (a Actor) Active() bool {
	return a.Status == StatusActive
}
