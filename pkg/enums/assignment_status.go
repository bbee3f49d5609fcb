package enums

import "fmt"

// AssignmentStatus tracks the lifecycle of an asset assignment.
type AssignmentStatus string

const (
	AssignmentStatusWaitingForAcceptance AssignmentStatus = "waiting_for_acceptance"
	AssignmentStatusAccepted             AssignmentStatus = "accepted"
	AssignmentStatusDeclined             AssignmentStatus = "declined"
	AssignmentStatusReturned             AssignmentStatus = "returned"
)

var validAssignmentStatuses = []AssignmentStatus{
	AssignmentStatusWaitingForAcceptance,
	AssignmentStatusAccepted,
	AssignmentStatusDeclined,
	AssignmentStatusReturned,
}

// ActiveAssignmentStatuses are the states that bind an asset to a user.
// An asset with an assignment in one of these states must itself be assigned.
var ActiveAssignmentStatuses = []AssignmentStatus{
	AssignmentStatusWaitingForAcceptance,
	AssignmentStatusAccepted,
}

// String implements fmt.Stringer.
func (s AssignmentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known AssignmentStatus.
func (s AssignmentStatus) IsValid() bool {
	for _, candidate := range validAssignmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsActive reports whether the status counts as an active assignment.
func (s AssignmentStatus) IsActive() bool {
	return s == AssignmentStatusWaitingForAcceptance || s == AssignmentStatusAccepted
}

// ParseAssignmentStatus converts raw input into an AssignmentStatus.
func ParseAssignmentStatus(value string) (AssignmentStatus, error) {
	for _, candidate := range validAssignmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid assignment status %q", value)
}
