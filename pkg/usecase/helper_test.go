package usecase_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/model/auth"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/repository/memory"
	"github.com/secmon-lab/themis/pkg/service/blob"
	"github.com/secmon-lab/themis/pkg/usecase"
)

type fixture struct {
	uc        *usecase.UseCases
	repo      *memory.Memory
	blob      *blob.Memory
	submitter *auth.Principal
	approver  *auth.Principal
	worker    *auth.Principal
	other     *auth.Principal
	now       time.Time
}

func newFixture(t *testing.T, opts ...usecase.Option) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		repo:      memory.New(),
		blob:      blob.NewMemory(),
		submitter: &auth.Principal{ID: "resident-1", Role: types.RoleSubmitter, Name: "Alice"},
		approver:  &auth.Principal{ID: "admin-1", Role: types.RoleApprover, Name: "Bob"},
		worker:    &auth.Principal{ID: "worker-1", Role: types.RoleAssignee, Name: "Carol"},
		other:     &auth.Principal{ID: "worker-2", Role: types.RoleAssignee, Name: "Dave"},
		now:       time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	for _, p := range []*auth.Principal{f.submitter, f.approver, f.worker, f.other} {
		gt.NoError(t, f.repo.User().Put(ctx, &model.User{
			ID:     p.ID,
			Name:   p.Name,
			Email:  p.ID + "@example.com",
			Role:   p.Role,
			Active: true,
		})).Required()
	}

	opts = append([]usecase.Option{
		usecase.WithBlobStore(f.blob),
		usecase.WithClock(func() time.Time { return f.now }),
	}, opts...)
	f.uc = usecase.New(f.repo, opts...)
	return f
}

func (f *fixture) create(t *testing.T) *model.Complaint {
	t.Helper()
	c, err := f.uc.Complaint.Create(context.Background(), f.submitter, usecase.CreateComplaintInput{
		Title:       "Leaking tap",
		Description: "The tap in washroom T2 keeps dripping",
		Category:    "Washroom - T2",
		Priority:    "High",
	})
	gt.NoError(t, err).Required()
	return c
}

// advance moves a new complaint up to status along the happy path
func (f *fixture) advance(t *testing.T, status types.ComplaintStatus) *model.Complaint {
	t.Helper()
	ctx := context.Background()
	c := f.create(t)

	steps := []struct {
		to  types.ComplaintStatus
		run func() (*model.Complaint, error)
	}{
		{types.ComplaintStatusApproved, func() (*model.Complaint, error) { return f.uc.Lifecycle.Approve(ctx, f.approver, c.ID) }},
		{types.ComplaintStatusAssigned, func() (*model.Complaint, error) { return f.uc.Lifecycle.Assign(ctx, f.approver, c.ID, f.worker.ID) }},
		{types.ComplaintStatusInProgress, func() (*model.Complaint, error) {
			return f.uc.Lifecycle.UpdateTaskStatus(ctx, f.worker, c.ID, types.ComplaintStatusInProgress, "")
		}},
		{types.ComplaintStatusWorkerPending, func() (*model.Complaint, error) {
			_, updated, err := f.uc.Attachment.UploadProof(ctx, f.worker, c.ID, []*model.UploadFile{pngFile("after.png", 16)})
			return updated, err
		}},
		{types.ComplaintStatusCompleted, func() (*model.Complaint, error) {
			return f.uc.Lifecycle.UpdateTaskStatus(ctx, f.worker, c.ID, types.ComplaintStatusCompleted, "Replaced washer")
		}},
	}

	for _, step := range steps {
		if c.Status == status {
			return c
		}
		next, err := step.run()
		gt.NoError(t, err).Required()
		gt.Value(t, next.Status).Equal(step.to)
		c = next
	}
	gt.Value(t, c.Status).Equal(status)
	return c
}

func (f *fixture) notifications(t *testing.T, p *auth.Principal) []*model.Notification {
	t.Helper()
	list, err := f.uc.Notification.List(context.Background(), p, false)
	gt.NoError(t, err).Required()
	return list
}

func countType(list []*model.Notification, typ types.NotificationType) int {
	n := 0
	for _, v := range list {
		if v.Type == typ {
			n++
		}
	}
	return n
}

func pngFile(name string, size int) *model.UploadFile {
	return &model.UploadFile{
		Filename: name,
		MimeType: "image/png",
		Size:     int64(size),
		Content:  bytes.NewReader(make([]byte, size)),
	}
}
