package usecase

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/model/auth"
	"github.com/secmon-lab/themis/pkg/domain/model/config"
	"github.com/secmon-lab/themis/pkg/utils/errutil"
)

type AttachmentUseCase struct {
	repo      interfaces.Repository
	blob      interfaces.BlobStore
	policy    config.UploadPolicy
	lifecycle *LifecycleUseCase
}

func NewAttachmentUseCase(repo interfaces.Repository, blob interfaces.BlobStore, policy config.UploadPolicy, lifecycle *LifecycleUseCase) *AttachmentUseCase {
	if policy.MaxFiles <= 0 {
		policy.MaxFiles = config.DefaultMaxFiles
	}
	if policy.MaxFileSize <= 0 {
		policy.MaxFileSize = config.DefaultMaxFileSize
	}
	return &AttachmentUseCase{
		repo:      repo,
		blob:      blob,
		policy:    policy,
		lifecycle: lifecycle,
	}
}

// Policy returns the upload limits in effect
func (uc *AttachmentUseCase) Policy() config.UploadPolicy {
	return uc.policy
}

// checkFiles enforces the batch and per-file limits before anything is stored
func (uc *AttachmentUseCase) checkFiles(files []*model.UploadFile) error {
	if len(files) == 0 {
		return goerr.Wrap(ErrValidation, "at least one file is required")
	}
	if len(files) > uc.policy.MaxFiles {
		return goerr.Wrap(ErrTooManyFiles, "too many files",
			goerr.V("count", len(files)),
			goerr.V("max", uc.policy.MaxFiles))
	}
	for _, f := range files {
		if f.Size > uc.policy.MaxFileSize {
			return goerr.Wrap(ErrFileTooLarge, "file is too large",
				goerr.V(FilenameKey, f.Filename),
				goerr.V("size", f.Size),
				goerr.V("max", uc.policy.MaxFileSize))
		}
		if !uc.policy.AllowsMimeType(f.MimeType) {
			return goerr.Wrap(ErrUnsupportedFileType, "file type is not allowed",
				goerr.V(FilenameKey, f.Filename),
				goerr.V("mime_type", f.MimeType))
		}
	}
	return nil
}

func storagePath(complaintID int64, id model.AttachmentID, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" {
		base = "file"
	}
	return fmt.Sprintf("complaints/%d/%s-%s", complaintID, id, base)
}

// store writes every file to the blob store and registers its metadata. On
// failure everything stored by this call is removed again.
func (uc *AttachmentUseCase) store(ctx context.Context, c *model.Complaint, uploaderID string, proof bool, files []*model.UploadFile) ([]*model.Attachment, error) {
	if uc.blob == nil {
		return nil, goerr.New("blob store is not configured")
	}

	var stored []*model.Attachment
	rollback := func() {
		uc.remove(ctx, stored)
	}

	for _, f := range files {
		id := model.NewAttachmentID()
		p := storagePath(c.ID, id, f.Filename)

		counter := &countingReader{r: io.LimitReader(f.Content, uc.policy.MaxFileSize+1)}
		if err := uc.blob.Put(ctx, p, f.MimeType, counter); err != nil {
			rollback()
			return nil, goerr.Wrap(err, "failed to store file", goerr.V(FilenameKey, f.Filename))
		}
		if counter.n > uc.policy.MaxFileSize {
			_ = uc.blob.Delete(ctx, p)
			rollback()
			return nil, goerr.Wrap(ErrFileTooLarge, "file is too large",
				goerr.V(FilenameKey, f.Filename),
				goerr.V("max", uc.policy.MaxFileSize))
		}

		a, err := uc.repo.Attachment().Create(ctx, &model.Attachment{
			ID:            id,
			ComplaintID:   c.ID,
			Filename:      f.Filename,
			StoragePath:   p,
			MimeType:      f.MimeType,
			Size:          counter.n,
			UploaderID:    uploaderID,
			IsProofOfWork: proof,
		})
		if err != nil {
			if delErr := uc.blob.Delete(ctx, p); delErr != nil {
				errutil.Warn(ctx, delErr, "failed to remove orphan blob")
			}
			rollback()
			return nil, goerr.Wrap(err, "failed to register attachment", goerr.V(FilenameKey, f.Filename))
		}
		stored = append(stored, a)
	}

	return stored, nil
}

func (uc *AttachmentUseCase) remove(ctx context.Context, attachments []*model.Attachment) {
	for _, a := range attachments {
		if err := uc.repo.Attachment().Delete(ctx, a.ID); err != nil {
			errutil.Warn(ctx, err, "failed to remove attachment metadata")
		}
		if err := uc.blob.Delete(ctx, a.StoragePath); err != nil {
			errutil.Warn(ctx, err, "failed to remove attachment blob")
		}
	}
}

// UploadEvidence attaches files to a complaint. Only its submitter may do so.
func (uc *AttachmentUseCase) UploadEvidence(ctx context.Context, p *auth.Principal, complaintID int64, files []*model.UploadFile) ([]*model.Attachment, error) {
	if p == nil {
		return nil, goerr.Wrap(ErrUnauthenticated, "principal is required")
	}
	if !p.Role.CanSubmit() {
		return nil, goerr.Wrap(ErrRoleDenied, "only submitters can upload evidence", goerr.V(RoleKey, p.Role))
	}
	if err := uc.checkFiles(files); err != nil {
		return nil, err
	}

	c, err := uc.repo.Complaint().Get(ctx, complaintID)
	if err != nil {
		return nil, wrapComplaintGet(err, complaintID)
	}
	if c.SubmitterID != p.ID {
		return nil, goerr.Wrap(ErrAccessDenied, "evidence can only be added to own complaints",
			goerr.V(ComplaintIDKey, complaintID),
			goerr.V(UserIDKey, p.ID))
	}

	return uc.store(ctx, c, p.ID, false, files)
}

// UploadProof stores proof of work from the assignee and moves an in-progress
// complaint to WorkerPending. Further uploads while it waits for review only
// add files.
func (uc *AttachmentUseCase) UploadProof(ctx context.Context, p *auth.Principal, complaintID int64, files []*model.UploadFile) ([]*model.Attachment, *model.Complaint, error) {
	if err := uc.checkFiles(files); err != nil {
		return nil, nil, err
	}

	c, err := uc.lifecycle.CheckProofAllowed(ctx, p, complaintID)
	if err != nil {
		return nil, nil, err
	}

	attachments, err := uc.store(ctx, c, p.ID, true, files)
	if err != nil {
		return nil, nil, err
	}

	updated, err := uc.lifecycle.SubmitProof(ctx, p, complaintID)
	if err != nil {
		uc.remove(ctx, attachments)
		return nil, nil, err
	}

	return attachments, updated, nil
}

// List returns the attachments of a complaint visible to p
func (uc *AttachmentUseCase) List(ctx context.Context, p *auth.Principal, complaintID int64, proof *bool) ([]*model.Attachment, error) {
	if p == nil {
		return nil, goerr.Wrap(ErrUnauthenticated, "principal is required")
	}
	c, err := uc.repo.Complaint().Get(ctx, complaintID)
	if err != nil {
		return nil, wrapComplaintGet(err, complaintID)
	}
	if !canView(p, c) {
		return nil, goerr.Wrap(ErrAccessDenied, "complaint is not visible to the caller", goerr.V(ComplaintIDKey, complaintID))
	}

	attachments, err := uc.repo.Attachment().List(ctx, complaintID, proof)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list attachments", goerr.V(ComplaintIDKey, complaintID))
	}
	return attachments, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
