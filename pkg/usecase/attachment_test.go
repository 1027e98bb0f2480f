package usecase_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/model/config"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/usecase"
)

func TestAttachment_UploadLimits(t *testing.T) {
	f := newFixture(t, usecase.WithFacilityConfig(&config.FacilityConfig{
		Upload: config.UploadPolicy{
			MaxFiles:         2,
			MaxFileSize:      64,
			AllowedMimeTypes: []string{"image/png"},
		},
	}))
	ctx := context.Background()
	c := f.create(t)

	testCases := []struct {
		name  string
		files []*model.UploadFile
		want  error
	}{
		{
			name:  "no files",
			files: nil,
			want:  usecase.ErrValidation,
		},
		{
			name:  "too many files",
			files: []*model.UploadFile{pngFile("a.png", 1), pngFile("b.png", 1), pngFile("c.png", 1)},
			want:  usecase.ErrTooManyFiles,
		},
		{
			name:  "declared size too large",
			files: []*model.UploadFile{pngFile("big.png", 65)},
			want:  usecase.ErrFileTooLarge,
		},
		{
			name: "content larger than declared",
			files: []*model.UploadFile{{
				Filename: "liar.png",
				MimeType: "image/png",
				Size:     4,
				Content:  bytes.NewReader(make([]byte, 128)),
			}},
			want: usecase.ErrFileTooLarge,
		},
		{
			name: "unsupported type",
			files: []*model.UploadFile{{
				Filename: "run.exe",
				MimeType: "application/octet-stream",
				Size:     4,
				Content:  bytes.NewReader(make([]byte, 4)),
			}},
			want: usecase.ErrUnsupportedFileType,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.Attachment.UploadEvidence(ctx, f.submitter, c.ID, tc.files)
			gt.Error(t, err).Is(tc.want)
		})
	}

	list, err := f.uc.Attachment.List(ctx, f.submitter, c.ID, nil)
	gt.NoError(t, err).Required()
	gt.Array(t, list).Length(0)
	gt.Value(t, f.blob.Len()).Equal(0)
}

func TestAttachment_EvidenceOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.create(t)

	stored, err := f.uc.Attachment.UploadEvidence(ctx, f.submitter, c.ID, []*model.UploadFile{pngFile("../../etc/leak.png", 10)})
	gt.NoError(t, err).Required()
	gt.Array(t, stored).Length(1)
	gt.Value(t, stored[0].IsProofOfWork).Equal(false)
	gt.Value(t, stored[0].Size).Equal(int64(10))
	gt.Bool(t, strings.Contains(stored[0].StoragePath, "..")).False()

	rc, err := f.blob.Get(ctx, stored[0].StoragePath)
	gt.NoError(t, err).Required()
	gt.NoError(t, rc.Close())

	intruder := *f.submitter
	intruder.ID = "resident-9"
	_, err = f.uc.Attachment.UploadEvidence(ctx, &intruder, c.ID, []*model.UploadFile{pngFile("x.png", 1)})
	gt.Error(t, err).Is(usecase.ErrAccessDenied)

	_, err = f.uc.Attachment.UploadEvidence(ctx, f.approver, c.ID, []*model.UploadFile{pngFile("x.png", 1)})
	gt.Error(t, err).Is(usecase.ErrRoleDenied)
}

func TestAttachment_Proof(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("proof before work started is a conflict and stores nothing", func(t *testing.T) {
		c := f.advance(t, types.ComplaintStatusAssigned)
		before := f.blob.Len()

		_, _, err := f.uc.Attachment.UploadProof(ctx, f.worker, c.ID, []*model.UploadFile{pngFile("p.png", 4)})
		gt.Error(t, err).Is(usecase.ErrStatusConflict)
		gt.Value(t, f.blob.Len()).Equal(before)
	})

	t.Run("only the assignee uploads proof", func(t *testing.T) {
		c := f.advance(t, types.ComplaintStatusInProgress)
		_, _, err := f.uc.Attachment.UploadProof(ctx, f.other, c.ID, []*model.UploadFile{pngFile("p.png", 4)})
		gt.Error(t, err).Is(usecase.ErrAccessDenied)
	})

	t.Run("second upload while pending is idempotent", func(t *testing.T) {
		c := f.advance(t, types.ComplaintStatusWorkerPending)
		notesBefore := countType(f.notifications(t, f.approver), types.NotificationProofUploaded)

		stored, updated, err := f.uc.Attachment.UploadProof(ctx, f.worker, c.ID, []*model.UploadFile{pngFile("more.png", 4)})
		gt.NoError(t, err).Required()
		gt.Array(t, stored).Length(1)
		gt.Value(t, updated.Status).Equal(types.ComplaintStatusWorkerPending)
		gt.Value(t, updated.UpdatedAt).Equal(c.UpdatedAt)

		proof := true
		list, err := f.uc.Attachment.List(ctx, f.approver, c.ID, &proof)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(2)

		notesAfter := countType(f.notifications(t, f.approver), types.NotificationProofUploaded)
		gt.Value(t, notesAfter).Equal(notesBefore)
	})
}
