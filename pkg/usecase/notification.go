package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/model/auth"
)

// NotificationListLimit caps how many notifications a listing returns
const NotificationListLimit = 50

type NotificationUseCase struct {
	repo interfaces.Repository
}

func NewNotificationUseCase(repo interfaces.Repository) *NotificationUseCase {
	return &NotificationUseCase{repo: repo}
}

// List returns the newest notifications of p
func (uc *NotificationUseCase) List(ctx context.Context, p *auth.Principal, unreadOnly bool) ([]*model.Notification, error) {
	if p == nil {
		return nil, goerr.Wrap(ErrUnauthenticated, "principal is required")
	}

	notifications, err := uc.repo.Notification().List(ctx, p.ID, unreadOnly, NotificationListLimit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list notifications", goerr.V(UserIDKey, p.ID))
	}
	return notifications, nil
}

// MarkRead marks one of p's notifications read. Notifications of other users
// are reported as not found.
func (uc *NotificationUseCase) MarkRead(ctx context.Context, p *auth.Principal, id model.NotificationID) error {
	if p == nil {
		return goerr.Wrap(ErrUnauthenticated, "principal is required")
	}

	if err := uc.repo.Notification().MarkRead(ctx, id, p.ID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrNotificationNotFound, "notification not found", goerr.V(NotificationIDKey, id))
		}
		return goerr.Wrap(err, "failed to mark notification read", goerr.V(NotificationIDKey, id))
	}
	return nil
}

// MarkAllRead marks every unread notification of p and returns how many changed
func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, p *auth.Principal) (int, error) {
	if p == nil {
		return 0, goerr.Wrap(ErrUnauthenticated, "principal is required")
	}

	count, err := uc.repo.Notification().MarkAllRead(ctx, p.ID)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to mark notifications read", goerr.V(UserIDKey, p.ID))
	}
	return count, nil
}
