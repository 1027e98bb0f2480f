package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"google.golang.org/api/iterator"
)

type commentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newCommentRepository(client *firestore.Client) *commentRepository {
	return &commentRepository{client: client}
}

// commentsCollection keeps each thread as a subcollection of its complaint
func (r *commentRepository) commentsCollection(complaintID int64) *firestore.CollectionRef {
	return r.client.Collection(prefixed(r.collectionPrefix, "complaints")).
		Doc(fmt.Sprintf("%d", complaintID)).
		Collection("comments")
}

func (r *commentRepository) Create(ctx context.Context, c *model.Comment) (*model.Comment, error) {
	created := *c
	if created.ID == "" {
		created.ID = model.NewCommentID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	ref := r.commentsCollection(created.ComplaintID).Doc(string(created.ID))
	if _, err := ref.Create(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create comment",
			goerr.V("complaint_id", created.ComplaintID),
			goerr.V("id", created.ID))
	}
	return &created, nil
}

func (r *commentRepository) List(ctx context.Context, complaintID int64) ([]*model.Comment, error) {
	iter := r.commentsCollection(complaintID).
		OrderBy("CreatedAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	result := []*model.Comment{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate comments", goerr.V("complaint_id", complaintID))
		}

		var c model.Comment
		if err := doc.DataTo(&c); err != nil {
			return nil, goerr.Wrap(err, "failed to decode comment", goerr.V("doc_id", doc.Ref.ID))
		}
		result = append(result, &c)
	}
	return result, nil
}
