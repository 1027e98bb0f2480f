package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/usecase"
)

func TestComment_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.advance(t, types.ComplaintStatusAssigned)

	_, err := f.uc.Comment.Add(ctx, f.submitter, c.ID, "Any update?")
	gt.NoError(t, err).Required()
	_, err = f.uc.Comment.Add(ctx, f.worker, c.ID, "On my way")
	gt.NoError(t, err).Required()
	_, err = f.uc.Comment.Add(ctx, f.approver, c.ID, "Thanks")
	gt.NoError(t, err).Required()

	_, err = f.uc.Comment.Add(ctx, f.other, c.ID, "I can help")
	gt.Error(t, err).Is(usecase.ErrAccessDenied)

	_, err = f.uc.Comment.Add(ctx, f.submitter, c.ID, "   ")
	gt.Error(t, err).Is(usecase.ErrValidation)

	_, err = f.uc.Comment.Add(ctx, f.submitter, c.ID, strings.Repeat("a", model.MaxCommentLength+1))
	gt.Error(t, err).Is(usecase.ErrValidation)

	_, err = f.uc.Comment.List(ctx, f.other, c.ID)
	gt.Error(t, err).Is(usecase.ErrAccessDenied)
}

func TestComment_OrderAndNotices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.advance(t, types.ComplaintStatusAssigned)

	bodies := []string{"first", "second", "third"}
	authors := []string{f.submitter.ID, f.worker.ID, f.approver.ID}
	for i, body := range bodies {
		p := f.submitter
		switch authors[i] {
		case f.worker.ID:
			p = f.worker
		case f.approver.ID:
			p = f.approver
		}
		view, err := f.uc.Comment.Add(ctx, p, c.ID, "  "+body+"  ")
		gt.NoError(t, err).Required()
		gt.Value(t, view.Body).Equal(body)
	}

	views, err := f.uc.Comment.List(ctx, f.submitter, c.ID)
	gt.NoError(t, err).Required()
	gt.Array(t, views).Length(3)
	for i, v := range views {
		gt.Value(t, v.Body).Equal(bodies[i])
		gt.Value(t, v.AuthorID).Equal(authors[i])
	}
	gt.Value(t, views[1].AuthorName).Equal(f.worker.Name)
	gt.Value(t, views[1].AuthorRole).Equal(types.RoleAssignee)

	// submitter: from worker and approver; worker: from submitter and approver
	gt.Value(t, countType(f.notifications(t, f.submitter), types.NotificationCommentAdded)).Equal(2)
	gt.Value(t, countType(f.notifications(t, f.worker), types.NotificationCommentAdded)).Equal(2)
	gt.Value(t, countType(f.notifications(t, f.approver), types.NotificationCommentAdded)).Equal(0)
}
