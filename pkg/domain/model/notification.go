package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

// NotificationID is a UUID-based identifier for Notification
type NotificationID string

// NewNotificationID generates a new UUID v4 NotificationID
func NewNotificationID() NotificationID {
	return NotificationID(uuid.New().String())
}

func (id NotificationID) String() string {
	return string(id)
}

// Notification is a per-recipient record of a lifecycle event. Only IsRead
// changes after creation.
type Notification struct {
	ID          NotificationID
	RecipientID string
	ComplaintID int64
	Title       string
	Message     string
	Type        types.NotificationType
	IsRead      bool
	CreatedAt   time.Time
}

// Validate checks that the notification can be stored
func (n *Notification) Validate() error {
	if n.RecipientID == "" {
		return goerr.New("notification recipient is required", goerr.V("type", n.Type))
	}
	if !n.Type.IsValid() {
		return goerr.New("invalid notification type", goerr.V("type", n.Type))
	}
	if n.Title == "" {
		return goerr.New("notification title is required", goerr.V("type", n.Type))
	}
	return nil
}
