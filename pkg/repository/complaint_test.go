package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

func newPendingComplaint(submitter, title, category string) *model.Complaint {
	return &model.Complaint{
		SubmitterID: submitter,
		Title:       title,
		Description: "description of " + title,
		Category:    category,
		Priority:    types.PriorityMedium,
		Status:      types.ComplaintStatusPending,
	}
}

func strPtr(s string) *string { return &s }

func runComplaintRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns increasing IDs", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		c1, err := repo.Complaint().Create(ctx, newPendingComplaint("resident-1", "Leaking tap", "Washroom"))
		gt.NoError(t, err).Required()
		c2, err := repo.Complaint().Create(ctx, newPendingComplaint("resident-1", "Broken light", "Hallway"))
		gt.NoError(t, err).Required()

		gt.Value(t, c1.ID).NotEqual(int64(0))
		gt.Value(t, c2.ID).NotEqual(c1.ID)
		gt.Bool(t, c1.CreatedAt.IsZero()).False()
		gt.Value(t, c1.Status).Equal(types.ComplaintStatusPending)
	})

	t.Run("Get returns stored complaint", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		input := newPendingComplaint("resident-1", "Leaking tap", "Washroom")
		input.LocationDetail = "T2"
		input.Floor = "2"
		created, err := repo.Complaint().Create(ctx, input)
		gt.NoError(t, err).Required()

		got, err := repo.Complaint().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Title).Equal("Leaking tap")
		gt.Value(t, got.LocationDetail).Equal("T2")
		gt.Value(t, got.Floor).Equal("2")
		gt.Value(t, got.AssigneeID).Equal("")
		gt.Value(t, got.ResolvedAt).Nil()
	})

	t.Run("Get returns ErrNotFound for unknown ID", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Complaint().Get(context.Background(), 999999)
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("List filters and sorts newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		washroom, err := repo.Complaint().Create(ctx, newPendingComplaint("resident-1", "Leaking tap", "Washroom - T2"))
		gt.NoError(t, err).Required()
		time.Sleep(10 * time.Millisecond)
		hallway, err := repo.Complaint().Create(ctx, newPendingComplaint("resident-2", "Broken light", "Hallway"))
		gt.NoError(t, err).Required()
		time.Sleep(10 * time.Millisecond)
		structured := newPendingComplaint("resident-1", "Clogged drain", "Washroom")
		structured.LocationDetail = "T1"
		drain, err := repo.Complaint().Create(ctx, structured)
		gt.NoError(t, err).Required()

		all, err := repo.Complaint().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(3)
		gt.Value(t, all[0].ID).Equal(drain.ID)
		gt.Value(t, all[2].ID).Equal(washroom.ID)

		byCategory, err := repo.Complaint().List(ctx, interfaces.WithCategory("washroom"))
		gt.NoError(t, err).Required()
		gt.Array(t, byCategory).Length(2)
		for _, c := range byCategory {
			gt.Value(t, c.ID).NotEqual(hallway.ID)
		}

		bySubmitter, err := repo.Complaint().List(ctx, interfaces.WithSubmitter("resident-2"))
		gt.NoError(t, err).Required()
		gt.Array(t, bySubmitter).Length(1)
		gt.Value(t, bySubmitter[0].ID).Equal(hallway.ID)

		bySearch, err := repo.Complaint().List(ctx, interfaces.WithSearch("LIGHT"))
		gt.NoError(t, err).Required()
		gt.Array(t, bySearch).Length(1)
		gt.Value(t, bySearch[0].ID).Equal(hallway.ID)

		byStatus, err := repo.Complaint().List(ctx, interfaces.WithStatus(types.ComplaintStatusApproved))
		gt.NoError(t, err).Required()
		gt.Array(t, byStatus).Length(0)

		_, err = repo.Complaint().Transition(ctx, hallway.ID, types.ComplaintStatusPending, &model.ComplaintPatch{Status: types.ComplaintStatusApproved}, nil)
		gt.NoError(t, err).Required()

		bySet, err := repo.Complaint().List(ctx, interfaces.WithStatuses(types.ComplaintStatusApproved, types.ComplaintStatusResolved))
		gt.NoError(t, err).Required()
		gt.Array(t, bySet).Length(1)
		gt.Value(t, bySet[0].ID).Equal(hallway.ID)

		openCount, err := repo.Complaint().Count(ctx, interfaces.WithStatuses(types.TaskStatuses(false)...), interfaces.WithSubmitter("resident-1"))
		gt.NoError(t, err).Required()
		gt.Value(t, openCount).Equal(2)
	})

	t.Run("List paginates and Count ignores pagination", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			_, err := repo.Complaint().Create(ctx, newPendingComplaint("resident-1", "Complaint", "Washroom"))
			gt.NoError(t, err).Required()
			time.Sleep(2 * time.Millisecond)
		}

		page1, err := repo.Complaint().List(ctx, interfaces.WithPage(1, 2))
		gt.NoError(t, err).Required()
		gt.Array(t, page1).Length(2)

		page3, err := repo.Complaint().List(ctx, interfaces.WithPage(3, 2))
		gt.NoError(t, err).Required()
		gt.Array(t, page3).Length(1)

		page4, err := repo.Complaint().List(ctx, interfaces.WithPage(4, 2))
		gt.NoError(t, err).Required()
		gt.Array(t, page4).Length(0)

		count, err := repo.Complaint().Count(ctx, interfaces.WithPage(1, 2))
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(5)
	})

	t.Run("Transition applies patch and stores notifications", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Complaint().Create(ctx, newPendingComplaint("resident-1", "Leaking tap", "Washroom"))
		gt.NoError(t, err).Required()

		now := time.Now().UTC()
		patch := &model.ComplaintPatch{
			Status:     types.ComplaintStatusApproved,
			ApproverID: strPtr("admin-1"),
			ApprovedAt: &now,
		}
		notifications := []*model.Notification{{
			RecipientID: "resident-1",
			ComplaintID: created.ID,
			Title:       "Complaint approved",
			Message:     "approved",
			Type:        types.NotificationComplaintApproved,
		}}

		updated, err := repo.Complaint().Transition(ctx, created.ID, types.ComplaintStatusPending, patch, notifications)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.ComplaintStatusApproved)
		gt.Value(t, updated.ApproverID).Equal("admin-1")
		gt.Value(t, updated.ApprovedAt).NotNil()

		got, err := repo.Complaint().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Status).Equal(types.ComplaintStatusApproved)

		list, err := repo.Notification().List(ctx, "resident-1", false, 50)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(1)
		gt.Value(t, list[0].Type).Equal(types.NotificationComplaintApproved)
		gt.Value(t, list[0].ComplaintID).Equal(created.ID)
	})

	t.Run("Transition rejects stale expected status", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Complaint().Create(ctx, newPendingComplaint("resident-1", "Leaking tap", "Washroom"))
		gt.NoError(t, err).Required()

		patch := &model.ComplaintPatch{Status: types.ComplaintStatusAssigned, AssigneeID: strPtr("worker-1")}
		_, err = repo.Complaint().Transition(ctx, created.ID, types.ComplaintStatusApproved, patch, nil)
		gt.Error(t, err).Is(interfaces.ErrStatusMismatch)

		got, err := repo.Complaint().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Status).Equal(types.ComplaintStatusPending)
		gt.Value(t, got.AssigneeID).Equal("")
	})

	t.Run("Transition returns ErrNotFound for unknown complaint", func(t *testing.T) {
		repo := newRepo(t)
		patch := &model.ComplaintPatch{Status: types.ComplaintStatusApproved}
		_, err := repo.Complaint().Transition(context.Background(), 424242, types.ComplaintStatusPending, patch, nil)
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("Transition writes nothing when a notification is invalid", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Complaint().Create(ctx, newPendingComplaint("resident-1", "Leaking tap", "Washroom"))
		gt.NoError(t, err).Required()

		patch := &model.ComplaintPatch{Status: types.ComplaintStatusApproved}
		notifications := []*model.Notification{
			{RecipientID: "resident-1", ComplaintID: created.ID, Title: "ok", Type: types.NotificationComplaintApproved},
			{RecipientID: "", ComplaintID: created.ID, Title: "broken", Type: types.NotificationComplaintApproved},
		}
		_, err = repo.Complaint().Transition(ctx, created.ID, types.ComplaintStatusPending, patch, notifications)
		gt.Value(t, err).NotNil()

		got, err := repo.Complaint().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Status).Equal(types.ComplaintStatusPending)

		list, err := repo.Notification().List(ctx, "resident-1", false, 50)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(0)
	})

	t.Run("Transition refuses a patch that breaks invariants", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Complaint().Create(ctx, newPendingComplaint("resident-1", "Leaking tap", "Washroom"))
		gt.NoError(t, err).Required()

		notifications := []*model.Notification{{
			RecipientID: "resident-1",
			ComplaintID: created.ID,
			Title:       "Complaint rejected",
			Message:     "rejected",
			Type:        types.NotificationComplaintRejected,
		}}
		now := time.Now().UTC()
		hours := 1.5
		testCases := []struct {
			name  string
			patch *model.ComplaintPatch
		}{
			{"rejected without reason", &model.ComplaintPatch{Status: types.ComplaintStatusRejected}},
			{"assigned without worker", &model.ComplaintPatch{Status: types.ComplaintStatusAssigned}},
			{"resolved time on approved", &model.ComplaintPatch{Status: types.ComplaintStatusApproved, ResolvedAt: &now, TimeTakenHours: &hours}},
		}

		for _, tc := range testCases {
			_, err := repo.Complaint().Transition(ctx, created.ID, types.ComplaintStatusPending, tc.patch, notifications)
			gt.Error(t, err).Is(interfaces.ErrInvariant)

			got, err := repo.Complaint().Get(ctx, created.ID)
			gt.NoError(t, err).Required()
			gt.Value(t, got.Status).Equal(types.ComplaintStatusPending)
			gt.Value(t, got.ResolvedAt).Nil()

			list, err := repo.Notification().List(ctx, "resident-1", false, 50)
			gt.NoError(t, err).Required()
			if len(list) != 0 {
				t.Errorf("%s: notifications stored for refused transition: %d", tc.name, len(list))
			}
		}
	})

	t.Run("concurrent transitions have exactly one winner", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Complaint().Create(ctx, newPendingComplaint("resident-1", "Leaking tap", "Washroom"))
		gt.NoError(t, err).Required()

		const workers = 8
		var wg sync.WaitGroup
		var mu sync.Mutex
		success, conflict := 0, 0
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				patch := &model.ComplaintPatch{Status: types.ComplaintStatusApproved}
				_, err := repo.Complaint().Transition(ctx, created.ID, types.ComplaintStatusPending, patch, nil)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					success++
				case errors.Is(err, interfaces.ErrStatusMismatch):
					conflict++
				}
			}()
		}
		wg.Wait()

		gt.Value(t, success).Equal(1)
		gt.Value(t, conflict).Equal(workers - 1)
	})
}

func TestComplaintRepository(t *testing.T) {
	runAllBackends(t, runComplaintRepositoryTest)
}
