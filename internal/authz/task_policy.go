package authz

// TaskRef carries the task attributes the policy decides on.
type TaskRef struct {
	ID             uint64
	OrganizationID uint64
	CreatedByID    uint64
	AssignedToID   *uint64
}

func (t TaskRef) ownedOrAssigned(userID uint64) bool {
	if t.CreatedByID == userID {
		return true
	}
	return t.AssignedToID != nil && *t.AssignedToID == userID
}

// CanView reports whether actor may see task.
// Only owners see every task in their organization; everyone else needs
// to be the creator or the assignee.
func CanView(task TaskRef, actor Actor) bool {
	return CheckView(task, actor) == nil
}

// CheckView is CanView returning the denial reason.
func CheckView(task TaskRef, actor Actor) error {
	if !actor.InOrganization(task.OrganizationID) {
		return deny("tasks.view", ReasonWrongOrganization)
	}
	if actor.Role == RoleOwner {
		return nil
	}
	if !task.ownedOrAssigned(actor.ID) {
		return deny("tasks.view", ReasonNotOwnerOrAssignee)
	}
	return nil
}

// CanModify reports whether actor may update, delete or reorder task.
// Owners and admins may modify any task in their organization; viewers never.
func CanModify(task TaskRef, actor Actor) bool {
	return CheckModify(task, actor) == nil
}

// CheckModify is CanModify returning the denial reason.
func CheckModify(task TaskRef, actor Actor) error {
	if !actor.InOrganization(task.OrganizationID) {
		return deny("tasks.modify", ReasonWrongOrganization)
	}
	switch actor.Role {
	case RoleOwner, RoleAdmin:
		return nil
	default:
		return deny("tasks.modify", ReasonInsufficientRole)
	}
}

// Visibility is the row filter a task query must apply for an actor.
type Visibility struct {
	OrganizationID uint64
	// RestrictToUserID limits rows to tasks created by or assigned to the user.
	RestrictToUserID *uint64
}

// TaskVisibility returns the list filter for actor. Owners and Admins list
// every task of their organization, so an Admin may list tasks CanView
// refuses it. Every other role lists only tasks it created or is assigned.
// Actors without an organization see nothing.
func TaskVisibility(actor Actor) (Visibility, error) {
	if actor.OrganizationID == nil {
		return Visibility{}, deny("tasks.list", ReasonWrongOrganization)
	}
	v := Visibility{OrganizationID: *actor.OrganizationID}
	if actor.Role != RoleOwner && actor.Role != RoleAdmin {
		id := actor.ID
		v.RestrictToUserID = &id
	}
	return v, nil
}

// Allows reports whether a task row passes the filter.
func (v Visibility) Allows(task TaskRef) bool {
	if task.OrganizationID != v.OrganizationID {
		return false
	}
	if v.RestrictToUserID == nil {
		return true
	}
	return task.ownedOrAssigned(*v.RestrictToUserID)
}
