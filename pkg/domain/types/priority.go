package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Priority represents the urgency of a complaint
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// DefaultPriority is used when the submitter does not choose one
const DefaultPriority = PriorityMedium

// AllPriorities returns all valid priorities
func AllPriorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}

// IsValid checks if the priority is valid
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// String returns the string representation of the priority
func (p Priority) String() string {
	return string(p)
}

// ParsePriority parses a string into a Priority, case-insensitively. Empty
// input yields DefaultPriority.
func ParsePriority(s string) (Priority, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultPriority, nil
	}
	for _, p := range AllPriorities() {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", goerr.New("invalid priority", goerr.V("priority", s))
}
