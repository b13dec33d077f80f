package authz

import (
	"errors"
	"fmt"
)

// Status is the account state of a user.
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusRejected Status = "rejected"
)

// Event drives the registration lifecycle.
type Event string

const (
	EventApprove Event = "approve"
	EventReject  Event = "reject"
)

// ErrInvalidTransition is returned when an event is not defined for the current status.
var ErrInvalidTransition = errors.New("authz: invalid status transition")

// Transition returns the status reached by applying event to from.
// Only pending accounts move; active and rejected are terminal.
func Transition(from Status, event Event) (Status, error) {
	if from != StatusPending {
		return from, fmt.Errorf("%w: %s on %s account", ErrInvalidTransition, event, from)
	}
	switch event {
	case EventApprove:
		return StatusActive, nil
	case EventReject:
		return StatusRejected, nil
	default:
		return from, fmt.Errorf("%w: unknown event %q", ErrInvalidTransition, event)
	}
}

// CanLogin reports whether an account in status may obtain a token.
// Pending accounts may log in; the activity gate blocks them downstream.
func CanLogin(status Status) bool {
	return status == StatusPending || status == StatusActive
}

// CanGrant reports whether approver may assign role during approval.
// The owner role can only be granted by an existing owner.
func CanGrant(approver, role Role) bool {
	if role == RoleOwner {
		return approver == RoleOwner
	}
	return role.Valid()
}
