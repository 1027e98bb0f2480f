package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/secmon-lab/themis/pkg/domain/model"
)

type commentRepository struct {
	mu       sync.RWMutex
	comments map[int64][]*model.Comment
}

func newCommentRepository() *commentRepository {
	return &commentRepository{
		comments: make(map[int64][]*model.Comment),
	}
}

func copyComment(c *model.Comment) *model.Comment {
	copied := *c
	return &copied
}

func (r *commentRepository) Create(ctx context.Context, c *model.Comment) (*model.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyComment(c)
	if created.ID == "" {
		created.ID = model.NewCommentID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	r.comments[created.ComplaintID] = append(r.comments[created.ComplaintID], created)
	return copyComment(created), nil
}

func (r *commentRepository) List(ctx context.Context, complaintID int64) ([]*model.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	thread := r.comments[complaintID]
	result := make([]*model.Comment, 0, len(thread))
	for _, c := range thread {
		result = append(result, copyComment(c))
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
