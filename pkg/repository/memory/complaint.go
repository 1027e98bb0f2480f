package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

type complaintRepository struct {
	mu            sync.RWMutex
	complaints    map[int64]*model.Complaint
	nextID        int64
	notifications *notificationRepository
}

func newComplaintRepository(notifications *notificationRepository) *complaintRepository {
	return &complaintRepository{
		complaints:    make(map[int64]*model.Complaint),
		nextID:        1,
		notifications: notifications,
	}
}

func (r *complaintRepository) Create(ctx context.Context, c *model.Complaint) (*model.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := model.CopyComplaint(c)
	created.ID = r.nextID
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now
	r.nextID++

	r.complaints[created.ID] = created
	return model.CopyComplaint(created), nil
}

func (r *complaintRepository) Get(ctx context.Context, id int64) (*model.Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.complaints[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "complaint not found", goerr.V("id", id))
	}

	return model.CopyComplaint(c), nil
}

func (r *complaintRepository) filter(opts []interfaces.ListComplaintOption) []*model.Complaint {
	cfg := interfaces.BuildListComplaintConfig(opts...)

	var matched []*model.Complaint
	for _, c := range r.complaints {
		if cfg.Match(c) {
			matched = append(matched, c)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched
}

func (r *complaintRepository) List(ctx context.Context, opts ...interfaces.ListComplaintOption) ([]*model.Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg := interfaces.BuildListComplaintConfig(opts...)
	page := cfg.Paginate(r.filter(opts))

	result := make([]*model.Complaint, 0, len(page))
	for _, c := range page {
		result = append(result, model.CopyComplaint(c))
	}
	return result, nil
}

func (r *complaintRepository) Count(ctx context.Context, opts ...interfaces.ListComplaintOption) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.filter(opts)), nil
}

func (r *complaintRepository) Transition(ctx context.Context, id int64, expected types.ComplaintStatus, patch *model.ComplaintPatch, notifications []*model.Notification) (*model.Complaint, error) {
	for _, n := range notifications {
		if err := n.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid notification", goerr.V("complaint_id", id))
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.complaints[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "complaint not found", goerr.V("id", id))
	}
	if current.Status != expected {
		return nil, goerr.Wrap(interfaces.ErrStatusMismatch, "complaint status changed",
			goerr.V("id", id),
			goerr.V("expected", expected),
			goerr.V("actual", current.Status))
	}

	updated := model.CopyComplaint(current)
	patch.Apply(updated)
	if err := updated.CheckInvariants(); err != nil {
		return nil, goerr.Wrap(interfaces.ErrInvariant, err.Error(), goerr.V("id", id))
	}
	updated.UpdatedAt = time.Now().UTC()

	r.notifications.insert(notifications)
	r.complaints[id] = updated

	return model.CopyComplaint(updated), nil
}
