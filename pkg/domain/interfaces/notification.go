package interfaces

import (
	"context"

	"github.com/secmon-lab/themis/pkg/domain/model"
)

// NotificationRepository defines the interface for per-recipient notifications
type NotificationRepository interface {
	// Create stores notifications that are not tied to a status change
	Create(ctx context.Context, notifications ...*model.Notification) error

	// List returns notifications of recipientID, newest first, at most limit
	List(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]*model.Notification, error)

	// MarkRead marks one notification read. ErrNotFound is returned when the
	// notification does not exist or belongs to another recipient.
	MarkRead(ctx context.Context, id model.NotificationID, recipientID string) error

	// MarkAllRead marks every unread notification of recipientID and returns how many changed
	MarkAllRead(ctx context.Context, recipientID string) (int, error)
}
