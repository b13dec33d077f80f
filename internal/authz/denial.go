package authz

import (
	"errors"
	"fmt"
)

// Reason is the machine-readable cause of a denial.
type Reason string

const (
	ReasonNotAuthenticated       Reason = "NOT_AUTHENTICATED"
	ReasonInsufficientRole       Reason = "INSUFFICIENT_ROLE"
	ReasonMissingPermission      Reason = "MISSING_PERMISSION"
	ReasonWrongOrganization      Reason = "WRONG_ORGANIZATION"
	ReasonNotOwnerOrAssignee     Reason = "NOT_OWNER_OR_ASSIGNEE"
	ReasonAccountPendingApproval Reason = "ACCOUNT_PENDING_APPROVAL"
	ReasonAccountRejected        Reason = "ACCOUNT_REJECTED"
)

// ErrDenied matches every *Denial with errors.Is.
var ErrDenied = errors.New("authz: not authorized")

// Denial is returned when an actor may not perform an operation.
type Denial struct {
	Reason    Reason
	Operation string
}

func (d *Denial) Error() string {
	if d.Operation == "" {
		return fmt.Sprintf("authz: denied: %s", d.Reason)
	}
	return fmt.Sprintf("authz: %s denied: %s", d.Operation, d.Reason)
}

// Is matches ErrDenied and any Denial with the same reason.
func (d *Denial) Is(target error) bool {
	if target == ErrDenied {
		return true
	}
	var other *Denial
	if errors.As(target, &other) {
		return other.Reason == d.Reason
	}
	return false
}

// AccountState reports whether the denial is about the account status,
// the one case where the reason is shown to the caller.
func (d *Denial) AccountState() bool {
	return d.Reason == ReasonAccountPendingApproval || d.Reason == ReasonAccountRejected
}

func deny(op string, reason Reason) *Denial {
	return &Denial{Reason: reason, Operation: op}
}

// ReasonOf extracts the denial reason from err, if any.
func ReasonOf(err error) (Reason, bool) {
	var d *Denial
	if errors.As(err, &d) {
		return d.Reason, true
	}
	return "", false
}
