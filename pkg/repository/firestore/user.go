package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type userRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newUserRepository(client *firestore.Client) *userRepository {
	return &userRepository{client: client}
}

func (r *userRepository) usersCollection() string {
	return prefixed(r.collectionPrefix, "users")
}

func (r *userRepository) Put(ctx context.Context, u *model.User) error {
	if err := u.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user")
	}

	ref := r.client.Collection(r.usersCollection()).Doc(u.ID)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		stored := *u
		doc, err := tx.Get(ref)
		switch {
		case err == nil:
			var existing model.User
			if err := doc.DataTo(&existing); err != nil {
				return goerr.Wrap(err, "failed to decode user", goerr.V("id", u.ID))
			}
			stored.CreatedAt = existing.CreatedAt
		case status.Code(err) == codes.NotFound:
			if stored.CreatedAt.IsZero() {
				stored.CreatedAt = time.Now().UTC()
			}
		default:
			return goerr.Wrap(err, "failed to get user", goerr.V("id", u.ID))
		}
		return tx.Set(ref, &stored)
	})
}

func (r *userRepository) Get(ctx context.Context, id string) (*model.User, error) {
	doc, err := r.client.Collection(r.usersCollection()).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("id", id))
	}

	var u model.User
	if err := doc.DataTo(&u); err != nil {
		return nil, goerr.Wrap(err, "failed to decode user", goerr.V("id", id))
	}
	return &u, nil
}

func (r *userRepository) GetMany(ctx context.Context, ids []string) (map[string]*model.User, error) {
	result := make(map[string]*model.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, r.client.Collection(r.usersCollection()).Doc(id))
	}

	docs, err := r.client.GetAll(ctx, refs)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get users", goerr.V("count", len(ids)))
	}

	for _, doc := range docs {
		if !doc.Exists() {
			continue
		}
		var u model.User
		if err := doc.DataTo(&u); err != nil {
			return nil, goerr.Wrap(err, "failed to decode user", goerr.V("doc_id", doc.Ref.ID))
		}
		result[u.ID] = &u
	}
	return result, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role types.Role, includeInactive bool) ([]*model.User, error) {
	q := r.client.Collection(r.usersCollection()).Where("Role", "==", string(role))
	if !includeInactive {
		q = q.Where("Active", "==", true)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	result := []*model.User{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate users", goerr.V("role", role))
		}

		var u model.User
		if err := doc.DataTo(&u); err != nil {
			return nil, goerr.Wrap(err, "failed to decode user", goerr.V("doc_id", doc.Ref.ID))
		}
		result = append(result, &u)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}
