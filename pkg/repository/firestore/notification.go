package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type notificationRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newNotificationRepository(client *firestore.Client) *notificationRepository {
	return &notificationRepository{client: client}
}

func (r *notificationRepository) notificationsCollection() string {
	return prefixed(r.collectionPrefix, "notifications")
}

func (r *notificationRepository) docRef(id model.NotificationID) *firestore.DocumentRef {
	return r.client.Collection(r.notificationsCollection()).Doc(id.String())
}

// prepare assigns ID and creation time to n in place
func (r *notificationRepository) prepare(n *model.Notification) *model.Notification {
	if n.ID == "" {
		n.ID = model.NewNotificationID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	return n
}

func (r *notificationRepository) Create(ctx context.Context, notifications ...*model.Notification) error {
	for _, n := range notifications {
		if err := n.Validate(); err != nil {
			return goerr.Wrap(err, "invalid notification")
		}
	}

	batch := r.client.Batch()
	for _, n := range notifications {
		stored := r.prepare(n)
		batch.Create(r.docRef(stored.ID), stored)
	}
	if len(notifications) == 0 {
		return nil
	}
	if _, err := batch.Commit(ctx); err != nil {
		return goerr.Wrap(err, "failed to create notifications", goerr.V("count", len(notifications)))
	}
	return nil
}

func (r *notificationRepository) List(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]*model.Notification, error) {
	q := r.client.Collection(r.notificationsCollection()).
		Where("RecipientID", "==", recipientID)
	if unreadOnly {
		q = q.Where("IsRead", "==", false)
	}
	q = q.OrderBy("CreatedAt", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	result := []*model.Notification{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate notifications", goerr.V("recipient_id", recipientID))
		}

		var n model.Notification
		if err := doc.DataTo(&n); err != nil {
			return nil, goerr.Wrap(err, "failed to decode notification", goerr.V("doc_id", doc.Ref.ID))
		}
		result = append(result, &n)
	}

	return result, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id model.NotificationID, recipientID string) error {
	ref := r.docRef(id)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get notification", goerr.V("id", id))
		}

		var n model.Notification
		if err := doc.DataTo(&n); err != nil {
			return goerr.Wrap(err, "failed to decode notification", goerr.V("id", id))
		}
		if n.RecipientID != recipientID {
			return goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
		}

		return tx.Update(ref, []firestore.Update{{Path: "IsRead", Value: true}})
	})
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	iter := r.client.Collection(r.notificationsCollection()).
		Where("RecipientID", "==", recipientID).
		Where("IsRead", "==", false).
		Documents(ctx)
	defer iter.Stop()

	bulkWriter := r.client.BulkWriter(ctx)
	count := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			bulkWriter.End()
			return count, goerr.Wrap(err, "failed to iterate unread notifications", goerr.V("recipient_id", recipientID))
		}

		if _, err := bulkWriter.Update(doc.Ref, []firestore.Update{{Path: "IsRead", Value: true}}); err != nil {
			bulkWriter.End()
			return count, goerr.Wrap(err, "failed to mark notification read", goerr.V("id", doc.Ref.ID))
		}
		count++
	}
	bulkWriter.End()

	return count, nil
}
