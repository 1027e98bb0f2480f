package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/model/auth"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

type UserUseCase struct {
	repo interfaces.Repository
}

func NewUserUseCase(repo interfaces.Repository) *UserUseCase {
	return &UserUseCase{repo: repo}
}

// Register creates or replaces a user in the directory
func (uc *UserUseCase) Register(ctx context.Context, u *model.User) error {
	u.ID = strings.TrimSpace(u.ID)
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.TrimSpace(u.Email)
	if err := u.Validate(); err != nil {
		return goerr.Wrap(ErrValidation, err.Error(), goerr.V(UserIDKey, u.ID))
	}
	if err := uc.repo.User().Put(ctx, u); err != nil {
		return goerr.Wrap(err, "failed to register user", goerr.V(UserIDKey, u.ID))
	}
	return nil
}

// Get returns a user by ID
func (uc *UserUseCase) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := uc.repo.User().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrUserNotFound, "user not found", goerr.V(UserIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V(UserIDKey, id))
	}
	return u, nil
}

// ListByRole returns the users of a role, including inactive ones when asked
func (uc *UserUseCase) ListByRole(ctx context.Context, role types.Role, includeInactive bool) ([]*model.User, error) {
	users, err := uc.repo.User().ListByRole(ctx, role, includeInactive)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list users", goerr.V(RoleKey, role))
	}
	return users, nil
}

// ListWorkers returns the active workers an approver can assign
func (uc *UserUseCase) ListWorkers(ctx context.Context, p *auth.Principal) ([]*model.User, error) {
	if p == nil {
		return nil, goerr.Wrap(ErrUnauthenticated, "principal is required")
	}
	if !p.Role.CanAssignTasks() {
		return nil, goerr.Wrap(ErrRoleDenied, "role cannot list workers", goerr.V(RoleKey, p.Role))
	}
	return uc.ListByRole(ctx, types.RoleAssignee, false)
}

// Me returns the directory entry of p, or one built from the principal when
// the directory does not know the caller.
func (uc *UserUseCase) Me(ctx context.Context, p *auth.Principal) (*model.User, error) {
	if p == nil {
		return nil, goerr.Wrap(ErrUnauthenticated, "principal is required")
	}

	u, err := uc.repo.User().Get(ctx, p.ID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return &model.User{ID: p.ID, Name: p.Name, Role: p.Role, Active: true}, nil
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V(UserIDKey, p.ID))
	}
	return u, nil
}
