package interfaces

import (
	"context"

	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

// UserRepository defines the interface for the user directory
type UserRepository interface {
	// Put creates or replaces a user
	Put(ctx context.Context, u *model.User) error

	Get(ctx context.Context, id string) (*model.User, error)

	// GetMany returns the users found among ids, keyed by ID
	GetMany(ctx context.Context, ids []string) (map[string]*model.User, error)

	// ListByRole returns users with role sorted by name. Inactive users are
	// included only when includeInactive is set.
	ListByRole(ctx context.Context, role types.Role, includeInactive bool) ([]*model.User, error)
}
