package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

func TestNextStatus(t *testing.T) {
	testCases := []struct {
		name   string
		from   types.ComplaintStatus
		action types.LifecycleAction
		to     types.ComplaintStatus
		ok     bool
	}{
		{"approve pending", types.ComplaintStatusPending, types.ActionApprove, types.ComplaintStatusApproved, true},
		{"reject pending", types.ComplaintStatusPending, types.ActionReject, types.ComplaintStatusRejected, true},
		{"approve twice", types.ComplaintStatusApproved, types.ActionApprove, "", false},
		{"assign approved", types.ComplaintStatusApproved, types.ActionAssign, types.ComplaintStatusAssigned, true},
		{"assign pending", types.ComplaintStatusPending, types.ActionAssign, "", false},
		{"start assigned", types.ComplaintStatusAssigned, types.ActionStartWork, types.ComplaintStatusInProgress, true},
		{"start resolved", types.ComplaintStatusResolved, types.ActionStartWork, "", false},
		{"proof in progress", types.ComplaintStatusInProgress, types.ActionUploadProof, types.ComplaintStatusWorkerPending, true},
		{"proof worker pending", types.ComplaintStatusWorkerPending, types.ActionUploadProof, types.ComplaintStatusWorkerPending, true},
		{"proof assigned", types.ComplaintStatusAssigned, types.ActionUploadProof, "", false},
		{"complete worker pending", types.ComplaintStatusWorkerPending, types.ActionCompleteWork, types.ComplaintStatusCompleted, true},
		{"verify approve", types.ComplaintStatusCompleted, types.ActionVerifyApprove, types.ComplaintStatusResolved, true},
		{"verify reject", types.ComplaintStatusCompleted, types.ActionVerifyReject, types.ComplaintStatusWorkerPending, true},
		{"verify in progress", types.ComplaintStatusInProgress, types.ActionVerifyApprove, "", false},
		{"cannot resolve", types.ComplaintStatusInProgress, types.ActionCannotResolve, types.ComplaintStatusCannotBeResolved, true},
		{"worker reject completed", types.ComplaintStatusCompleted, types.ActionWorkerReject, "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			to, ok := model.NextStatus(tc.from, tc.action)
			gt.Value(t, ok).Equal(tc.ok)
			gt.Value(t, to).Equal(tc.to)
		})
	}
}

func TestTerminalStatusesHaveNoActions(t *testing.T) {
	for _, s := range types.AllComplaintStatuses() {
		if !s.IsTerminal() {
			continue
		}
		t.Run(s.String(), func(t *testing.T) {
			gt.Array(t, model.ActionsFrom(s)).Length(0)
		})
	}
}

func TestAvailableActions(t *testing.T) {
	c := &model.Complaint{
		ID:          1,
		SubmitterID: "resident-1",
		AssigneeID:  "worker-1",
		Status:      types.ComplaintStatusInProgress,
	}

	t.Run("assignee sees work actions", func(t *testing.T) {
		actions := model.AvailableActions(c, "worker-1", types.RoleAssignee)
		gt.Array(t, actions).
			Has(types.ActionCompleteWork).
			Has(types.ActionUploadProof).
			Has(types.ActionCannotResolve)
	})

	t.Run("other assignee sees nothing", func(t *testing.T) {
		gt.Array(t, model.AvailableActions(c, "worker-2", types.RoleAssignee)).Length(0)
	})

	t.Run("approver sees nothing while work is ongoing", func(t *testing.T) {
		gt.Array(t, model.AvailableActions(c, "admin-1", types.RoleApprover)).Length(0)
	})

	t.Run("approver sees verify on completed", func(t *testing.T) {
		done := model.CopyComplaint(c)
		done.Status = types.ComplaintStatusCompleted
		actions := model.AvailableActions(done, "admin-1", types.RoleApprover)
		gt.Array(t, actions).Length(2).
			Has(types.ActionVerifyApprove).
			Has(types.ActionVerifyReject)
	})

	t.Run("submitter never runs lifecycle actions", func(t *testing.T) {
		pending := model.CopyComplaint(c)
		pending.Status = types.ComplaintStatusPending
		gt.Array(t, model.AvailableActions(pending, "resident-1", types.RoleSubmitter)).Length(0)
	})
}
