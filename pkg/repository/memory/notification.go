package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

type notificationRepository struct {
	mu            sync.RWMutex
	notifications map[model.NotificationID]*model.Notification
}

func newNotificationRepository() *notificationRepository {
	return &notificationRepository{
		notifications: make(map[model.NotificationID]*model.Notification),
	}
}

func copyNotification(n *model.Notification) *model.Notification {
	copied := *n
	return &copied
}

// insert stores already validated notifications
func (r *notificationRepository) insert(notifications []*model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, n := range notifications {
		stored := copyNotification(n)
		if stored.ID == "" {
			stored.ID = model.NewNotificationID()
		}
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = now
		}
		r.notifications[stored.ID] = stored
		n.ID = stored.ID
		n.CreatedAt = stored.CreatedAt
	}
}

func (r *notificationRepository) Create(ctx context.Context, notifications ...*model.Notification) error {
	for _, n := range notifications {
		if err := n.Validate(); err != nil {
			return goerr.Wrap(err, "invalid notification")
		}
	}
	r.insert(notifications)
	return nil
}

func (r *notificationRepository) List(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]*model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Notification
	for _, n := range r.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		result = append(result, copyNotification(n))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	if result == nil {
		result = []*model.Notification{}
	}
	return result, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id model.NotificationID, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, exists := r.notifications[id]
	if !exists || n.RecipientID != recipientID {
		return goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
	}
	n.IsRead = true
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}
