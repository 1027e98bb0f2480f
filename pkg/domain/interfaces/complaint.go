package interfaces

import (
	"context"

	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

// ComplaintRepository defines the interface for Complaint data access
type ComplaintRepository interface {
	// Create stores a new complaint with an auto-generated ID
	Create(ctx context.Context, c *model.Complaint) (*model.Complaint, error)

	// Get retrieves a complaint by ID
	Get(ctx context.Context, id int64) (*model.Complaint, error)

	// List returns complaints matching the options, newest first
	List(ctx context.Context, opts ...ListComplaintOption) ([]*model.Complaint, error)

	// Count returns the number of complaints matching the options, ignoring pagination
	Count(ctx context.Context, opts ...ListComplaintOption) (int, error)

	// Transition applies patch only if the complaint is still in status expected,
	// and stores notifications in the same atomic unit. It returns
	// ErrStatusMismatch when another writer changed the status first and
	// ErrInvariant when the patched record would be inconsistent. It writes
	// nothing when any notification cannot be stored.
	Transition(ctx context.Context, id int64, expected types.ComplaintStatus, patch *model.ComplaintPatch, notifications []*model.Notification) (*model.Complaint, error)
}
