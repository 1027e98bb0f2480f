package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/model/auth"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/utils/logging"
)

const defaultWorkerRejectionReason = "Rejected by the assigned worker"

// LifecycleUseCase is the only writer of complaint status. Every request is
// checked against the transition table, the caller's role and ownership, then
// committed with its notifications through a conditional write.
type LifecycleUseCase struct {
	repo  interfaces.Repository
	clock func() time.Time
}

func NewLifecycleUseCase(repo interfaces.Repository, clock func() time.Time) *LifecycleUseCase {
	if clock == nil {
		clock = time.Now
	}
	return &LifecycleUseCase{repo: repo, clock: clock}
}

// plan builds the fields and notifications written by one transition
type plan func(c *model.Complaint, to types.ComplaintStatus, now time.Time) (*model.ComplaintPatch, []*model.Notification)

// checkRole rejects a missing principal or a role that never runs action.
// It runs before any input or store lookup.
func checkRole(p *auth.Principal, action types.LifecycleAction) error {
	if p == nil {
		return goerr.Wrap(ErrUnauthenticated, "principal is required")
	}
	if !model.RoleMayRun(p.Role, action) {
		return goerr.Wrap(ErrRoleDenied, "role cannot run action",
			goerr.V(RoleKey, p.Role),
			goerr.V(ActionKey, action))
	}
	return nil
}

// authorize loads the complaint and checks that p may run action on it now
func (uc *LifecycleUseCase) authorize(ctx context.Context, p *auth.Principal, id int64, action types.LifecycleAction) (*model.Complaint, types.ComplaintStatus, error) {
	if err := checkRole(p, action); err != nil {
		return nil, "", err
	}

	c, err := uc.repo.Complaint().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, "", goerr.Wrap(ErrComplaintNotFound, "complaint not found", goerr.V(ComplaintIDKey, id))
		}
		return nil, "", goerr.Wrap(err, "failed to get complaint", goerr.V(ComplaintIDKey, id))
	}

	if model.RequiresAssignee(action) && c.AssigneeID != p.ID {
		return nil, "", goerr.Wrap(ErrAccessDenied, "complaint is not assigned to the caller",
			goerr.V(ComplaintIDKey, id),
			goerr.V(UserIDKey, p.ID))
	}

	to, ok := model.NextStatus(c.Status, action)
	if !ok {
		return nil, "", goerr.Wrap(ErrStatusConflict, "action is not allowed in current status",
			goerr.V(ComplaintIDKey, id),
			goerr.V(StatusKey, c.Status),
			goerr.V(ActionKey, action))
	}

	return c, to, nil
}

func (uc *LifecycleUseCase) run(ctx context.Context, p *auth.Principal, id int64, action types.LifecycleAction, build plan) (*model.Complaint, error) {
	c, to, err := uc.authorize(ctx, p, id, action)
	if err != nil {
		return nil, err
	}

	// A self loop leaves the record untouched
	if to == c.Status {
		return c, nil
	}

	patch, notifications := build(c, to, uc.clock().UTC())
	patch.Status = to

	updated, err := uc.repo.Complaint().Transition(ctx, id, c.Status, patch, notifications)
	if err != nil {
		switch {
		case errors.Is(err, interfaces.ErrStatusMismatch):
			return nil, goerr.Wrap(ErrStatusConflict, "complaint was changed by another request",
				goerr.V(ComplaintIDKey, id),
				goerr.V(ActionKey, action))
		case errors.Is(err, interfaces.ErrNotFound):
			return nil, goerr.Wrap(ErrComplaintNotFound, "complaint not found", goerr.V(ComplaintIDKey, id))
		default:
			return nil, goerr.Wrap(err, "failed to apply transition",
				goerr.V(ComplaintIDKey, id),
				goerr.V(ActionKey, action))
		}
	}

	logging.From(ctx).Info("complaint transitioned",
		"complaint_id", id,
		"action", action,
		"from", c.Status,
		"to", updated.Status,
		"principal", p.ID,
	)
	return updated, nil
}

// Approve accepts a pending complaint
func (uc *LifecycleUseCase) Approve(ctx context.Context, p *auth.Principal, id int64) (*model.Complaint, error) {
	return uc.run(ctx, p, id, types.ActionApprove, func(c *model.Complaint, _ types.ComplaintStatus, now time.Time) (*model.ComplaintPatch, []*model.Notification) {
		approver := p.ID
		return &model.ComplaintPatch{
			ApproverID: &approver,
			ApprovedAt: &now,
		}, []*model.Notification{notifyApproved(c)}
	})
}

// Reject declines a pending complaint. reason is required.
func (uc *LifecycleUseCase) Reject(ctx context.Context, p *auth.Principal, id int64, reason string) (*model.Complaint, error) {
	if err := checkRole(p, types.ActionReject); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, goerr.Wrap(ErrValidation, "rejection reason is required", goerr.V(ComplaintIDKey, id))
	}

	return uc.run(ctx, p, id, types.ActionReject, func(c *model.Complaint, _ types.ComplaintStatus, now time.Time) (*model.ComplaintPatch, []*model.Notification) {
		return &model.ComplaintPatch{
			RejectionReason: &reason,
			RejectedAt:      &now,
		}, []*model.Notification{notifyRejected(c, reason)}
	})
}

// Assign dispatches an approved complaint to an active worker
func (uc *LifecycleUseCase) Assign(ctx context.Context, p *auth.Principal, id int64, workerID string) (*model.Complaint, error) {
	if err := checkRole(p, types.ActionAssign); err != nil {
		return nil, err
	}
	workerID = strings.TrimSpace(workerID)
	if workerID == "" {
		return nil, goerr.Wrap(ErrValidation, "worker ID is required", goerr.V(ComplaintIDKey, id))
	}

	worker, err := uc.repo.User().Get(ctx, workerID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrValidation, "worker does not exist", goerr.V(UserIDKey, workerID))
		}
		return nil, goerr.Wrap(err, "failed to get worker", goerr.V(UserIDKey, workerID))
	}
	if !worker.IsActiveWorker() {
		return nil, goerr.Wrap(ErrValidation, "user is not an active worker",
			goerr.V(UserIDKey, workerID),
			goerr.V(RoleKey, worker.Role))
	}

	return uc.run(ctx, p, id, types.ActionAssign, func(c *model.Complaint, _ types.ComplaintStatus, now time.Time) (*model.ComplaintPatch, []*model.Notification) {
		assigned := model.CopyComplaint(c)
		assigned.AssigneeID = worker.ID
		return &model.ComplaintPatch{
				AssigneeID: &worker.ID,
				AssignedAt: &now,
			}, []*model.Notification{
				notifyTaskAssigned(worker.ID, assigned),
				notifyComplaintAssigned(assigned),
			}
	})
}

// UpdateTaskStatus runs the worker action that leads to status. note is the
// resolution text for Completed and CannotBeResolved and the reason for Rejected.
func (uc *LifecycleUseCase) UpdateTaskStatus(ctx context.Context, p *auth.Principal, id int64, status types.ComplaintStatus, note string) (*model.Complaint, error) {
	action, err := types.WorkerStatusAction(status)
	if err != nil {
		return nil, goerr.Wrap(ErrValidation, "invalid task status",
			goerr.V(ComplaintIDKey, id),
			goerr.V(StatusKey, status))
	}
	note = strings.TrimSpace(note)

	return uc.run(ctx, p, id, action, func(c *model.Complaint, to types.ComplaintStatus, now time.Time) (*model.ComplaintPatch, []*model.Notification) {
		patch := &model.ComplaintPatch{}
		switch action {
		case types.ActionCompleteWork, types.ActionCannotResolve:
			if note != "" {
				patch.Resolution = &note
			}
		case types.ActionWorkerReject:
			reason := note
			if reason == "" {
				reason = defaultWorkerRejectionReason
			}
			patch.RejectionReason = &reason
			patch.RejectedAt = &now
		}
		return patch, []*model.Notification{notifyStatusUpdated(c, to)}
	})
}

// SubmitProof advances an in-progress complaint to WorkerPending after proof of
// work was stored. It is a no-op when the complaint already waits for review.
func (uc *LifecycleUseCase) SubmitProof(ctx context.Context, p *auth.Principal, id int64) (*model.Complaint, error) {
	return uc.run(ctx, p, id, types.ActionUploadProof, func(c *model.Complaint, _ types.ComplaintStatus, _ time.Time) (*model.ComplaintPatch, []*model.Notification) {
		return &model.ComplaintPatch{}, uc.proofRecipients(ctx, c)
	})
}

// proofRecipients is the approver of the complaint, or every active approver
// when no approver is recorded.
func (uc *LifecycleUseCase) proofRecipients(ctx context.Context, c *model.Complaint) []*model.Notification {
	if c.ApproverID != "" {
		return []*model.Notification{notifyProofUploaded(c.ApproverID, c)}
	}

	approvers, err := uc.repo.User().ListByRole(ctx, types.RoleApprover, false)
	if err != nil {
		logging.From(ctx).Warn("failed to list approvers for proof notification",
			"complaint_id", c.ID,
			"error", err.Error())
		return nil
	}

	notifications := make([]*model.Notification, 0, len(approvers))
	for _, a := range approvers {
		notifications = append(notifications, notifyProofUploaded(a.ID, c))
	}
	return notifications
}

// Verify closes completed work (approve) or sends it back to the worker
func (uc *LifecycleUseCase) Verify(ctx context.Context, p *auth.Principal, id int64, approve bool, feedback string) (*model.Complaint, error) {
	if approve {
		return uc.run(ctx, p, id, types.ActionVerifyApprove, func(c *model.Complaint, _ types.ComplaintStatus, now time.Time) (*model.ComplaintPatch, []*model.Notification) {
			hours := model.HoursBetween(c.CreatedAt, now)
			return &model.ComplaintPatch{
				ResolvedAt:     &now,
				TimeTakenHours: &hours,
			}, []*model.Notification{notifyResolved(c)}
		})
	}

	feedback = strings.TrimSpace(feedback)
	return uc.run(ctx, p, id, types.ActionVerifyReject, func(c *model.Complaint, _ types.ComplaintStatus, _ time.Time) (*model.ComplaintPatch, []*model.Notification) {
		return &model.ComplaintPatch{}, []*model.Notification{notifyRevision(c, feedback)}
	})
}

// CheckProofAllowed reports an error when p cannot upload proof for id now.
// It lets callers reject a request before storing any file.
func (uc *LifecycleUseCase) CheckProofAllowed(ctx context.Context, p *auth.Principal, id int64) (*model.Complaint, error) {
	c, _, err := uc.authorize(ctx, p, id, types.ActionUploadProof)
	return c, err
}
