package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

type attachmentRepository struct {
	mu          sync.RWMutex
	attachments map[model.AttachmentID]*model.Attachment
}

func newAttachmentRepository() *attachmentRepository {
	return &attachmentRepository{
		attachments: make(map[model.AttachmentID]*model.Attachment),
	}
}

func copyAttachment(a *model.Attachment) *model.Attachment {
	copied := *a
	return &copied
}

func (r *attachmentRepository) Create(ctx context.Context, a *model.Attachment) (*model.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyAttachment(a)
	if created.ID == "" {
		created.ID = model.NewAttachmentID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	r.attachments[created.ID] = created
	return copyAttachment(created), nil
}

func (r *attachmentRepository) List(ctx context.Context, complaintID int64, proof *bool) ([]*model.Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.Attachment{}
	for _, a := range r.attachments {
		if a.ComplaintID != complaintID {
			continue
		}
		if proof != nil && a.IsProofOfWork != *proof {
			continue
		}
		result = append(result, copyAttachment(a))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *attachmentRepository) Delete(ctx context.Context, id model.AttachmentID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.attachments[id]; !exists {
		return goerr.Wrap(ErrNotFound, "attachment not found", goerr.V("id", id))
	}
	delete(r.attachments, id)
	return nil
}
