package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model/auth"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

// NoAuthnUseCase authenticates every request as a fixed user (for development/testing)
type NoAuthnUseCase struct {
	repo   interfaces.Repository
	userID string
	role   types.Role
}

// NewNoAuthnUseCase creates a NoAuthnUseCase. The role is used only when the
// user directory does not know userID.
func NewNoAuthnUseCase(repo interfaces.Repository, userID string, role types.Role) *NoAuthnUseCase {
	return &NoAuthnUseCase{
		repo:   repo,
		userID: userID,
		role:   role,
	}
}

// Authenticate ignores the token and returns the configured user
func (uc *NoAuthnUseCase) Authenticate(ctx context.Context, _ string) (*auth.Principal, error) {
	u, err := uc.repo.User().Get(ctx, uc.userID)
	if err == nil {
		return &auth.Principal{ID: u.ID, Role: u.Role, Name: u.Name}, nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, goerr.Wrap(err, "failed to look up user", goerr.V(UserIDKey, uc.userID))
	}
	return &auth.Principal{ID: uc.userID, Role: uc.role, Name: uc.userID}, nil
}

// IsNoAuthn returns true for NoAuthnUseCase
func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
