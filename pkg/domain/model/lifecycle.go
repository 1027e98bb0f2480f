package model

import "github.com/secmon-lab/themis/pkg/domain/types"

type transitionKey struct {
	from   types.ComplaintStatus
	action types.LifecycleAction
}

// transitions is the complete set of legal status changes. A pair missing
// from the table is rejected as a conflict.
var transitions = map[transitionKey]types.ComplaintStatus{
	{types.ComplaintStatusPending, types.ActionApprove}: types.ComplaintStatusApproved,
	{types.ComplaintStatusPending, types.ActionReject}:  types.ComplaintStatusRejected,

	{types.ComplaintStatusApproved, types.ActionAssign}: types.ComplaintStatusAssigned,

	{types.ComplaintStatusAssigned, types.ActionStartWork}:     types.ComplaintStatusInProgress,
	{types.ComplaintStatusAssigned, types.ActionCompleteWork}:  types.ComplaintStatusCompleted,
	{types.ComplaintStatusAssigned, types.ActionWorkerReject}:  types.ComplaintStatusRejected,
	{types.ComplaintStatusAssigned, types.ActionCannotResolve}: types.ComplaintStatusCannotBeResolved,

	{types.ComplaintStatusInProgress, types.ActionCompleteWork}:  types.ComplaintStatusCompleted,
	{types.ComplaintStatusInProgress, types.ActionWorkerReject}:  types.ComplaintStatusRejected,
	{types.ComplaintStatusInProgress, types.ActionCannotResolve}: types.ComplaintStatusCannotBeResolved,
	{types.ComplaintStatusInProgress, types.ActionUploadProof}:   types.ComplaintStatusWorkerPending,

	{types.ComplaintStatusWorkerPending, types.ActionCompleteWork}: types.ComplaintStatusCompleted,
	{types.ComplaintStatusWorkerPending, types.ActionUploadProof}:  types.ComplaintStatusWorkerPending,

	{types.ComplaintStatusCompleted, types.ActionVerifyApprove}: types.ComplaintStatusResolved,
	{types.ComplaintStatusCompleted, types.ActionVerifyReject}:  types.ComplaintStatusWorkerPending,
}

// NextStatus returns the status reached by running action on a complaint in
// status from. The second result is false when the pair is not allowed.
func NextStatus(from types.ComplaintStatus, action types.LifecycleAction) (types.ComplaintStatus, bool) {
	to, ok := transitions[transitionKey{from: from, action: action}]
	return to, ok
}

// ActionsFrom lists the actions accepted in status, in declaration order
func ActionsFrom(status types.ComplaintStatus) []types.LifecycleAction {
	var actions []types.LifecycleAction
	for _, action := range types.AllLifecycleActions() {
		if _, ok := NextStatus(status, action); ok {
			actions = append(actions, action)
		}
	}
	return actions
}

// RoleMayRun reports whether a principal with role is allowed to run action
// at all, before any ownership check.
func RoleMayRun(role types.Role, action types.LifecycleAction) bool {
	switch action {
	case types.ActionApprove, types.ActionReject:
		return role.CanApprove()
	case types.ActionAssign:
		return role.CanAssignTasks()
	case types.ActionVerifyApprove, types.ActionVerifyReject:
		return role.CanVerify()
	case types.ActionStartWork, types.ActionCompleteWork, types.ActionWorkerReject,
		types.ActionCannotResolve, types.ActionUploadProof:
		return role.CanWorkTasks()
	default:
		return false
	}
}

// RequiresAssignee reports whether only the current assignee may run action
func RequiresAssignee(action types.LifecycleAction) bool {
	switch action {
	case types.ActionStartWork, types.ActionCompleteWork, types.ActionWorkerReject,
		types.ActionCannotResolve, types.ActionUploadProof:
		return true
	default:
		return false
	}
}

// AvailableActions returns the actions principalID with role can run on c now.
func AvailableActions(c *Complaint, principalID string, role types.Role) []types.LifecycleAction {
	var actions []types.LifecycleAction
	for _, action := range ActionsFrom(c.Status) {
		if !RoleMayRun(role, action) {
			continue
		}
		if RequiresAssignee(action) && c.AssigneeID != principalID {
			continue
		}
		actions = append(actions, action)
	}
	return actions
}
