package authz

// Authorize applies the pre-resource gate of op to actor.
// It returns nil when allowed and a *Denial otherwise.
func Authorize(actor *Actor, op Operation) error {
	if actor == nil {
		return deny(op.name, ReasonNotAuthenticated)
	}
	if op.active {
		if reason, blocked := accountReason(*actor); blocked {
			return deny(op.name, reason)
		}
	}
	if len(op.roles) > 0 && !satisfiesAny(actor.Role, op.roles) {
		return deny(op.name, ReasonInsufficientRole)
	}
	if !HasAll(actor.Role, op.permissions...) {
		return deny(op.name, ReasonMissingPermission)
	}
	return nil
}

// AuthorizeInScope runs Authorize and then the org scope check against target.
// Operations without a declared scope skip the second step.
func AuthorizeInScope(actor *Actor, op Operation, target *uint64) error {
	if err := Authorize(actor, op); err != nil {
		return err
	}
	scope, ok := op.Scope()
	if !ok {
		return nil
	}
	if !InScope(*actor, target, scope) {
		return deny(op.name, ReasonWrongOrganization)
	}
	return nil
}

// CheckActive returns the account-state denial for pending and rejected actors.
func CheckActive(actor Actor) error {
	if reason, blocked := accountReason(actor); blocked {
		return deny("", reason)
	}
	return nil
}

func accountReason(actor Actor) (Reason, bool) {
	switch actor.Status {
	case StatusActive:
		return "", false
	case StatusRejected:
		return ReasonAccountRejected, true
	default:
		return ReasonAccountPendingApproval, true
	}
}

func satisfiesAny(actor Role, floors []Role) bool {
	for _, floor := range floors {
		if SatisfiesFloor(actor, floor) {
			return true
		}
	}
	return false
}
