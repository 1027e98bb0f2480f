package interfaces

import (
	"context"

	"github.com/secmon-lab/themis/pkg/domain/model"
)

// CommentRepository defines the interface for the append-only comment log
type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) (*model.Comment, error)

	// List returns the comments of a complaint, oldest first
	List(ctx context.Context, complaintID int64) ([]*model.Comment, error)
}
