package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

func newUserRepository() *userRepository {
	return &userRepository{
		users: make(map[string]*model.User),
	}
}

func copyUser(u *model.User) *model.User {
	copied := *u
	return &copied
}

func (r *userRepository) Put(ctx context.Context, u *model.User) error {
	if err := u.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyUser(u)
	if existing, ok := r.users[u.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.users[u.ID] = stored
	return nil
}

func (r *userRepository) Get(ctx context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, exists := r.users[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
	}
	return copyUser(u), nil
}

func (r *userRepository) GetMany(ctx context.Context, ids []string) (map[string]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*model.User, len(ids))
	for _, id := range ids {
		if u, exists := r.users[id]; exists {
			result[id] = copyUser(u)
		}
	}
	return result, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role types.Role, includeInactive bool) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.User{}
	for _, u := range r.users {
		if u.Role != role {
			continue
		}
		if !includeInactive && !u.Active {
			continue
		}
		result = append(result, copyUser(u))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}
