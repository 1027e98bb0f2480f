package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

func runAttachmentRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("List filters by proof flag", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		complaint, err := repo.Complaint().Create(ctx, newPendingComplaint("resident-1", "Leaking tap", "Washroom"))
		gt.NoError(t, err).Required()

		evidence, err := repo.Attachment().Create(ctx, &model.Attachment{
			ComplaintID: complaint.ID,
			Filename:    "tap.jpg",
			StoragePath: "complaints/1/tap.jpg",
			MimeType:    "image/jpeg",
			Size:        1024,
			UploaderID:  "resident-1",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, evidence.ID).NotEqual(model.AttachmentID(""))
		time.Sleep(5 * time.Millisecond)

		_, err = repo.Attachment().Create(ctx, &model.Attachment{
			ComplaintID:   complaint.ID,
			Filename:      "fixed.png",
			StoragePath:   "complaints/1/fixed.png",
			MimeType:      "image/png",
			Size:          2048,
			UploaderID:    "worker-1",
			IsProofOfWork: true,
		})
		gt.NoError(t, err).Required()

		all, err := repo.Attachment().List(ctx, complaint.ID, nil)
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(2)
		gt.Value(t, all[0].Filename).Equal("tap.jpg")

		proof := true
		proofs, err := repo.Attachment().List(ctx, complaint.ID, &proof)
		gt.NoError(t, err).Required()
		gt.Array(t, proofs).Length(1)
		gt.Value(t, proofs[0].UploaderID).Equal("worker-1")
	})

	t.Run("Delete removes attachment", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		complaint, err := repo.Complaint().Create(ctx, newPendingComplaint("resident-1", "Leaking tap", "Washroom"))
		gt.NoError(t, err).Required()

		a, err := repo.Attachment().Create(ctx, &model.Attachment{
			ComplaintID: complaint.ID,
			Filename:    "tap.jpg",
			StoragePath: "complaints/1/tap.jpg",
			MimeType:    "image/jpeg",
			Size:        1,
			UploaderID:  "resident-1",
		})
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Attachment().Delete(ctx, a.ID)).Required()
		gt.Error(t, repo.Attachment().Delete(ctx, a.ID)).Is(interfaces.ErrNotFound)

		all, err := repo.Attachment().List(ctx, complaint.ID, nil)
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(0)
	})
}

func TestAttachmentRepository(t *testing.T) {
	runAllBackends(t, runAttachmentRepositoryTest)
}
