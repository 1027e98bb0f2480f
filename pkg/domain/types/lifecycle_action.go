package types

import "github.com/m-mizutani/goerr/v2"

// LifecycleAction names a request that may move a complaint between statuses
type LifecycleAction string

const (
	ActionApprove       LifecycleAction = "approve"
	ActionReject        LifecycleAction = "reject"
	ActionAssign        LifecycleAction = "assign"
	ActionStartWork     LifecycleAction = "start_work"
	ActionCompleteWork  LifecycleAction = "complete_work"
	ActionWorkerReject  LifecycleAction = "worker_reject"
	ActionCannotResolve LifecycleAction = "cannot_resolve"
	ActionUploadProof   LifecycleAction = "upload_proof"
	ActionVerifyApprove LifecycleAction = "verify_approve"
	ActionVerifyReject  LifecycleAction = "verify_reject"
)

// AllLifecycleActions returns every lifecycle action
func AllLifecycleActions() []LifecycleAction {
	return []LifecycleAction{
		ActionApprove,
		ActionReject,
		ActionAssign,
		ActionStartWork,
		ActionCompleteWork,
		ActionWorkerReject,
		ActionCannotResolve,
		ActionUploadProof,
		ActionVerifyApprove,
		ActionVerifyReject,
	}
}

// String returns the string representation of the action
func (a LifecycleAction) String() string {
	return string(a)
}

// WorkerStatusAction maps the status an assignee asks for on the task status
// endpoint to the lifecycle action that produces it.
func WorkerStatusAction(status ComplaintStatus) (LifecycleAction, error) {
	switch status {
	case ComplaintStatusInProgress:
		return ActionStartWork, nil
	case ComplaintStatusCompleted:
		return ActionCompleteWork, nil
	case ComplaintStatusRejected:
		return ActionWorkerReject, nil
	case ComplaintStatusCannotBeResolved:
		return ActionCannotResolve, nil
	default:
		return "", goerr.New("status cannot be requested by an assignee", goerr.V("status", status))
	}
}
