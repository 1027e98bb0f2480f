package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type attachmentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAttachmentRepository(client *firestore.Client) *attachmentRepository {
	return &attachmentRepository{client: client}
}

func (r *attachmentRepository) attachmentsCollection() string {
	return prefixed(r.collectionPrefix, "attachments")
}

func (r *attachmentRepository) Create(ctx context.Context, a *model.Attachment) (*model.Attachment, error) {
	created := *a
	if created.ID == "" {
		created.ID = model.NewAttachmentID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	ref := r.client.Collection(r.attachmentsCollection()).Doc(created.ID.String())
	if _, err := ref.Create(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create attachment", goerr.V("id", created.ID))
	}
	return &created, nil
}

func (r *attachmentRepository) List(ctx context.Context, complaintID int64, proof *bool) ([]*model.Attachment, error) {
	q := r.client.Collection(r.attachmentsCollection()).
		Where("ComplaintID", "==", complaintID)
	if proof != nil {
		q = q.Where("IsProofOfWork", "==", *proof)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	result := []*model.Attachment{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate attachments", goerr.V("complaint_id", complaintID))
		}

		var a model.Attachment
		if err := doc.DataTo(&a); err != nil {
			return nil, goerr.Wrap(err, "failed to decode attachment", goerr.V("doc_id", doc.Ref.ID))
		}
		result = append(result, &a)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *attachmentRepository) Delete(ctx context.Context, id model.AttachmentID) error {
	ref := r.client.Collection(r.attachmentsCollection()).Doc(id.String())

	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "attachment not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to check attachment existence", goerr.V("id", id))
	}

	if _, err := ref.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete attachment", goerr.V("id", id))
	}
	return nil
}
