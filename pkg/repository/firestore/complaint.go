package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type complaintRepository struct {
	client           *firestore.Client
	collectionPrefix string
	notifications    *notificationRepository
}

func newComplaintRepository(client *firestore.Client, notifications *notificationRepository) *complaintRepository {
	return &complaintRepository{
		client:        client,
		notifications: notifications,
	}
}

func (r *complaintRepository) complaintsCollection() string {
	return prefixed(r.collectionPrefix, "complaints")
}

func (r *complaintRepository) counterCollection() string {
	return prefixed(r.collectionPrefix, "counters")
}

func (r *complaintRepository) complaintCounterDoc() string {
	return "complaint_counter"
}

func (r *complaintRepository) docRef(id int64) *firestore.DocumentRef {
	return r.client.Collection(r.complaintsCollection()).Doc(fmt.Sprintf("%d", id))
}

func (r *complaintRepository) getNextID(ctx context.Context) (int64, error) {
	counterRef := r.client.Collection(r.counterCollection()).Doc(r.complaintCounterDoc())

	var nextID int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(counterRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				nextID = 1
				return tx.Set(counterRef, map[string]interface{}{
					"value": nextID,
				})
			}
			return goerr.Wrap(err, "failed to get counter")
		}

		currentValue, err := doc.DataAt("value")
		if err != nil {
			return goerr.Wrap(err, "failed to get counter value")
		}

		val, ok := currentValue.(int64)
		if !ok {
			return goerr.New("counter value is not of type int64", goerr.V("value", currentValue))
		}
		nextID = val + 1
		return tx.Update(counterRef, []firestore.Update{
			{Path: "value", Value: nextID},
		})
	})

	if err != nil {
		return 0, goerr.Wrap(err, "failed to get next ID")
	}

	return nextID, nil
}

func (r *complaintRepository) Create(ctx context.Context, c *model.Complaint) (*model.Complaint, error) {
	nextID, err := r.getNextID(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get next ID")
	}

	now := time.Now().UTC()
	created := model.CopyComplaint(c)
	created.ID = nextID
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now

	if _, err := r.docRef(created.ID).Set(ctx, created); err != nil {
		return nil, goerr.Wrap(err, "failed to create complaint", goerr.V("id", created.ID))
	}

	return created, nil
}

func (r *complaintRepository) Get(ctx context.Context, id int64) (*model.Complaint, error) {
	docSnap, err := r.docRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "complaint not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get complaint", goerr.V("id", id))
	}

	var c model.Complaint
	if err := docSnap.DataTo(&c); err != nil {
		return nil, goerr.Wrap(err, "failed to decode complaint", goerr.V("id", id))
	}

	return &c, nil
}

// query pushes the equality filters to Firestore. Category prefix and text
// search are evaluated on the decoded documents.
func (r *complaintRepository) query(ctx context.Context, opts []interfaces.ListComplaintOption) ([]*model.Complaint, error) {
	cfg := interfaces.BuildListComplaintConfig(opts...)

	q := r.client.Collection(r.complaintsCollection()).Query
	if s := cfg.Status(); s != nil {
		q = q.Where("Status", "==", string(*s))
	}
	if cfg.SubmitterID() != "" {
		q = q.Where("SubmitterID", "==", cfg.SubmitterID())
	}
	if cfg.AssigneeID() != "" {
		q = q.Where("AssigneeID", "==", cfg.AssigneeID())
	}
	q = q.OrderBy("CreatedAt", firestore.Desc)

	iter := q.Documents(ctx)
	defer iter.Stop()

	var complaints []*model.Complaint
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate complaints")
		}

		var c model.Complaint
		if err := docSnap.DataTo(&c); err != nil {
			return nil, goerr.Wrap(err, "failed to decode complaint", goerr.V("doc_id", docSnap.Ref.ID))
		}
		if cfg.Match(&c) {
			complaints = append(complaints, &c)
		}
	}

	return complaints, nil
}

func (r *complaintRepository) List(ctx context.Context, opts ...interfaces.ListComplaintOption) ([]*model.Complaint, error) {
	complaints, err := r.query(ctx, opts)
	if err != nil {
		return nil, err
	}
	return interfaces.BuildListComplaintConfig(opts...).Paginate(complaints), nil
}

func (r *complaintRepository) Count(ctx context.Context, opts ...interfaces.ListComplaintOption) (int, error) {
	complaints, err := r.query(ctx, opts)
	if err != nil {
		return 0, err
	}
	return len(complaints), nil
}

func (r *complaintRepository) Transition(ctx context.Context, id int64, expected types.ComplaintStatus, patch *model.ComplaintPatch, notifications []*model.Notification) (*model.Complaint, error) {
	for _, n := range notifications {
		if err := n.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid notification", goerr.V("complaint_id", id))
		}
	}

	ref := r.docRef(id)
	var updated *model.Complaint

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "complaint not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get complaint", goerr.V("id", id))
		}

		var current model.Complaint
		if err := doc.DataTo(&current); err != nil {
			return goerr.Wrap(err, "failed to decode complaint", goerr.V("id", id))
		}
		if current.Status != expected {
			return goerr.Wrap(interfaces.ErrStatusMismatch, "complaint status changed",
				goerr.V("id", id),
				goerr.V("expected", expected),
				goerr.V("actual", current.Status))
		}

		patch.Apply(&current)
		if err := current.CheckInvariants(); err != nil {
			return goerr.Wrap(interfaces.ErrInvariant, err.Error(), goerr.V("id", id))
		}
		current.UpdatedAt = time.Now().UTC()

		if err := tx.Set(ref, &current); err != nil {
			return goerr.Wrap(err, "failed to update complaint", goerr.V("id", id))
		}
		for _, n := range notifications {
			stored := r.notifications.prepare(n)
			if err := tx.Create(r.notifications.docRef(stored.ID), stored); err != nil {
				return goerr.Wrap(err, "failed to create notification", goerr.V("id", stored.ID))
			}
		}

		updated = &current
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to run transition transaction", goerr.V("id", id))
	}

	return updated, nil
}
