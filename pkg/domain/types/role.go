package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Role is the capability class of an authenticated principal
type Role string

const (
	RoleSubmitter Role = "submitter"
	RoleApprover  Role = "approver"
	RoleAssignee  Role = "assignee"
)

// AllRoles returns all valid roles
func AllRoles() []Role {
	return []Role{
		RoleSubmitter,
		RoleApprover,
		RoleAssignee,
	}
}

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleSubmitter, RoleApprover, RoleAssignee:
		return true
	default:
		return false
	}
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// CanSubmit reports whether the role may file new complaints
func (r Role) CanSubmit() bool {
	return r == RoleSubmitter
}

// CanApprove reports whether the role may approve or reject pending complaints
func (r Role) CanApprove() bool {
	return r == RoleApprover
}

// CanAssignTasks reports whether the role may dispatch complaints to workers
func (r Role) CanAssignTasks() bool {
	return r == RoleApprover
}

// CanVerify reports whether the role may accept or send back completed work
func (r Role) CanVerify() bool {
	return r == RoleApprover
}

// CanWorkTasks reports whether the role may be assigned complaints
func (r Role) CanWorkTasks() bool {
	return r == RoleAssignee
}

// CanViewAll reports whether the role may read every complaint
func (r Role) CanViewAll() bool {
	return r == RoleApprover
}

var legacyRoles = map[string]Role{
	"resident": RoleSubmitter,
	"admin":    RoleApprover,
	"worker":   RoleAssignee,
}

// ParseRole parses a string into a Role. The names used by older clients
// (resident, admin, worker) are mapped to their role.
func ParseRole(s string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if role, ok := legacyRoles[normalized]; ok {
		return role, nil
	}
	role := Role(normalized)
	if !role.IsValid() {
		return "", goerr.New("invalid role", goerr.V("role", s))
	}
	return role, nil
}
