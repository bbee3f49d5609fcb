package enums

import "fmt"

// ReturnRequestStatus tracks the lifecycle of a return request.
type ReturnRequestStatus string

const (
	ReturnRequestStatusWaitingForReturning ReturnRequestStatus = "waiting_for_returning"
	ReturnRequestStatusCompleted           ReturnRequestStatus = "completed"
)

var validReturnRequestStatuses = []ReturnRequestStatus{
	ReturnRequestStatusWaitingForReturning,
	ReturnRequestStatusCompleted,
}

// String implements fmt.Stringer.
func (s ReturnRequestStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ReturnRequestStatus.
func (s ReturnRequestStatus) IsValid() bool {
	for _, candidate := range validReturnRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseReturnRequestStatus converts raw input into a ReturnRequestStatus.
func ParseReturnRequestStatus(value string) (ReturnRequestStatus, error) {
	for _, candidate := range validReturnRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid return request status %q", value)
}
