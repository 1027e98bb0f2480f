package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

func runCommentRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("List returns thread oldest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		complaint, err := repo.Complaint().Create(ctx, newPendingComplaint("resident-1", "Leaking tap", "Washroom"))
		gt.NoError(t, err).Required()
		other, err := repo.Complaint().Create(ctx, newPendingComplaint("resident-1", "Broken light", "Hallway"))
		gt.NoError(t, err).Required()

		for _, body := range []string{"first", "second", "third"} {
			_, err := repo.Comment().Create(ctx, &model.Comment{
				ComplaintID: complaint.ID,
				AuthorID:    "resident-1",
				Body:        body,
			})
			gt.NoError(t, err).Required()
			time.Sleep(5 * time.Millisecond)
		}
		_, err = repo.Comment().Create(ctx, &model.Comment{ComplaintID: other.ID, AuthorID: "resident-1", Body: "elsewhere"})
		gt.NoError(t, err).Required()

		thread, err := repo.Comment().List(ctx, complaint.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, thread).Length(3)
		gt.Value(t, thread[0].Body).Equal("first")
		gt.Value(t, thread[2].Body).Equal("third")
	})

	t.Run("List of empty thread", func(t *testing.T) {
		repo := newRepo(t)
		thread, err := repo.Comment().List(context.Background(), 12345)
		gt.NoError(t, err).Required()
		gt.Array(t, thread).Length(0)
	})
}

func TestCommentRepository(t *testing.T) {
	runAllBackends(t, runCommentRepositoryTest)
}
