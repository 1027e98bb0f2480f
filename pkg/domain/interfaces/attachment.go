package interfaces

import (
	"context"

	"github.com/secmon-lab/themis/pkg/domain/model"
)

// AttachmentRepository defines the interface for attachment metadata
type AttachmentRepository interface {
	Create(ctx context.Context, a *model.Attachment) (*model.Attachment, error)

	// List returns attachments of a complaint, oldest first. A non-nil proof
	// restricts the result to proof-of-work (true) or evidence (false) files.
	List(ctx context.Context, complaintID int64, proof *bool) ([]*model.Attachment, error)

	Delete(ctx context.Context, id model.AttachmentID) error
}
