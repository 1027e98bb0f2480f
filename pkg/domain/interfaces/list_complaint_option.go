package interfaces

import (
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

// ListComplaintOption is a functional option for filtering complaints in List and Count
type ListComplaintOption func(*listComplaintConfig)

type listComplaintConfig struct {
	status      *types.ComplaintStatus
	statuses    []types.ComplaintStatus
	category    string
	submitterID string
	assigneeID  string
	search      string
	limit       int
	offset      int
}

// WithStatus filters complaints by exact status
func WithStatus(status types.ComplaintStatus) ListComplaintOption {
	return func(c *listComplaintConfig) {
		c.status = &status
	}
}

// WithStatuses filters complaints whose status is one of statuses. A later
// WithStatuses replaces an earlier one.
func WithStatuses(statuses ...types.ComplaintStatus) ListComplaintOption {
	return func(c *listComplaintConfig) {
		c.statuses = append([]types.ComplaintStatus{}, statuses...)
	}
}

// WithCategory filters complaints whose category starts with category, ignoring case
func WithCategory(category string) ListComplaintOption {
	return func(c *listComplaintConfig) {
		c.category = category
	}
}

// WithSubmitter filters complaints filed by userID
func WithSubmitter(userID string) ListComplaintOption {
	return func(c *listComplaintConfig) {
		c.submitterID = userID
	}
}

// WithAssignee filters complaints assigned to userID
func WithAssignee(userID string) ListComplaintOption {
	return func(c *listComplaintConfig) {
		c.assigneeID = userID
	}
}

// WithSearch filters complaints whose title or description contains query
func WithSearch(query string) ListComplaintOption {
	return func(c *listComplaintConfig) {
		c.search = query
	}
}

// WithPage selects a page of results. page starts at 1.
func WithPage(page, limit int) ListComplaintOption {
	return func(c *listComplaintConfig) {
		if page < 1 {
			page = 1
		}
		if limit < 0 {
			limit = 0
		}
		c.limit = limit
		c.offset = (page - 1) * limit
	}
}

// BuildListComplaintConfig builds a listComplaintConfig from options
func BuildListComplaintConfig(opts ...ListComplaintOption) *listComplaintConfig {
	cfg := &listComplaintConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Status returns the status filter value, or nil if not set
func (cfg *listComplaintConfig) Status() *types.ComplaintStatus {
	return cfg.status
}

// Statuses returns the status set filter
func (cfg *listComplaintConfig) Statuses() []types.ComplaintStatus {
	return cfg.statuses
}

// Category returns the category prefix filter
func (cfg *listComplaintConfig) Category() string {
	return cfg.category
}

// SubmitterID returns the submitter filter
func (cfg *listComplaintConfig) SubmitterID() string {
	return cfg.submitterID
}

// AssigneeID returns the assignee filter
func (cfg *listComplaintConfig) AssigneeID() string {
	return cfg.assigneeID
}

// Search returns the free text filter
func (cfg *listComplaintConfig) Search() string {
	return cfg.search
}

// Limit returns the page size, 0 means unlimited
func (cfg *listComplaintConfig) Limit() int {
	return cfg.limit
}

// Offset returns the number of matching complaints to skip
func (cfg *listComplaintConfig) Offset() int {
	return cfg.offset
}

// Match reports whether c passes every filter except pagination
func (cfg *listComplaintConfig) Match(c *model.Complaint) bool {
	if cfg.status != nil && c.Status != *cfg.status {
		return false
	}
	if len(cfg.statuses) > 0 {
		found := false
		for _, s := range cfg.statuses {
			if c.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if cfg.submitterID != "" && c.SubmitterID != cfg.submitterID {
		return false
	}
	if cfg.assigneeID != "" && c.AssigneeID != cfg.assigneeID {
		return false
	}
	return c.MatchCategory(cfg.category) && c.MatchText(cfg.search)
}

// Paginate applies offset and limit to an already sorted result
func (cfg *listComplaintConfig) Paginate(complaints []*model.Complaint) []*model.Complaint {
	if cfg.offset >= len(complaints) {
		return []*model.Complaint{}
	}
	complaints = complaints[cfg.offset:]
	if cfg.limit > 0 && cfg.limit < len(complaints) {
		complaints = complaints[:cfg.limit]
	}
	return complaints
}
