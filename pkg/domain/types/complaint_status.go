package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ComplaintStatus represents the lifecycle state of a complaint
type ComplaintStatus string

const (
	ComplaintStatusPending          ComplaintStatus = "Pending"
	ComplaintStatusApproved         ComplaintStatus = "Approved"
	ComplaintStatusAssigned         ComplaintStatus = "Assigned"
	ComplaintStatusInProgress       ComplaintStatus = "InProgress"
	ComplaintStatusWorkerPending    ComplaintStatus = "WorkerPending"
	ComplaintStatusCompleted        ComplaintStatus = "Completed"
	ComplaintStatusResolved         ComplaintStatus = "Resolved"
	ComplaintStatusRejected         ComplaintStatus = "Rejected"
	ComplaintStatusCannotBeResolved ComplaintStatus = "CannotBeResolved"
)

// AllComplaintStatuses returns all valid complaint statuses
func AllComplaintStatuses() []ComplaintStatus {
	return []ComplaintStatus{
		ComplaintStatusPending,
		ComplaintStatusApproved,
		ComplaintStatusAssigned,
		ComplaintStatusInProgress,
		ComplaintStatusWorkerPending,
		ComplaintStatusCompleted,
		ComplaintStatusResolved,
		ComplaintStatusRejected,
		ComplaintStatusCannotBeResolved,
	}
}

// IsValid checks if the complaint status is valid
func (s ComplaintStatus) IsValid() bool {
	switch s {
	case ComplaintStatusPending,
		ComplaintStatusApproved,
		ComplaintStatusAssigned,
		ComplaintStatusInProgress,
		ComplaintStatusWorkerPending,
		ComplaintStatusCompleted,
		ComplaintStatusResolved,
		ComplaintStatusRejected,
		ComplaintStatusCannotBeResolved:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition can leave the status
func (s ComplaintStatus) IsTerminal() bool {
	switch s {
	case ComplaintStatusResolved,
		ComplaintStatusRejected,
		ComplaintStatusCannotBeResolved:
		return true
	default:
		return false
	}
}

// RequiresAssignee reports whether a complaint in this status must carry an assignee
func (s ComplaintStatus) RequiresAssignee() bool {
	switch s {
	case ComplaintStatusAssigned,
		ComplaintStatusInProgress,
		ComplaintStatusWorkerPending,
		ComplaintStatusCompleted,
		ComplaintStatusResolved:
		return true
	default:
		return false
	}
}

// IsTaskDone reports whether the assignee has finished the work, used to
// split a worker's task list into pending and completed.
func (s ComplaintStatus) IsTaskDone() bool {
	return s == ComplaintStatusCompleted || s == ComplaintStatusResolved
}

// TaskStatuses returns the statuses on the done side of IsTaskDone, or the
// rest when done is false.
func TaskStatuses(done bool) []ComplaintStatus {
	var statuses []ComplaintStatus
	for _, s := range AllComplaintStatuses() {
		if s.IsTaskDone() == done {
			statuses = append(statuses, s)
		}
	}
	return statuses
}

// String returns the string representation of the complaint status
func (s ComplaintStatus) String() string {
	return string(s)
}

// ParseComplaintStatus parses a string into a ComplaintStatus. Legacy spellings
// with spaces ("In Progress", "Worker Pending") are accepted.
func ParseComplaintStatus(s string) (ComplaintStatus, error) {
	compact := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	for _, status := range AllComplaintStatuses() {
		if strings.EqualFold(compact, string(status)) {
			return status, nil
		}
	}
	return "", goerr.New("invalid complaint status", goerr.V("status", s))
}
