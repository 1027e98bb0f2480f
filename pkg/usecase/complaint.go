package usecase

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/model/auth"
	"github.com/secmon-lab/themis/pkg/domain/model/config"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/utils/errutil"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultSubmitterPageSize = 10
	DefaultApproverPageSize  = 20
	DefaultTaskPageSize      = 20
	MaxPageSize              = 100
)

type ComplaintUseCase struct {
	repo     interfaces.Repository
	facility *config.FacilityConfig
	limiter  interfaces.RateLimiter
}

func NewComplaintUseCase(repo interfaces.Repository, facility *config.FacilityConfig, limiter interfaces.RateLimiter) *ComplaintUseCase {
	if facility == nil {
		facility = config.DefaultFacilityConfig()
	}
	return &ComplaintUseCase{
		repo:     repo,
		facility: facility,
		limiter:  limiter,
	}
}

// CreateComplaintInput is what a submitter provides for a new complaint
type CreateComplaintInput struct {
	Title          string
	Description    string
	Category       string
	LocationDetail string
	Subcategory    string
	Floor          string
	Room           string
	Priority       string
}

// ListComplaintsInput holds the query of a complaint listing
type ListComplaintsInput struct {
	Status   string
	Category string
	Search   string
	Page     int
	Limit    int

	// State narrows a task list to "pending" or "completed" work
	State string
}

// ComplaintPage is one page of a listing with the total number of matches
type ComplaintPage struct {
	Complaints []*model.Complaint
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// ComplaintDetail is a complaint with its attachments and discussion
type ComplaintDetail struct {
	Complaint   *model.Complaint
	Attachments []*model.Attachment
	Comments    []*model.CommentView
}

// TaskList partitions the tasks of a worker into open and finished ones
type TaskList struct {
	Pending   []*model.Complaint
	Completed []*model.Complaint

	// PendingTotal and CompletedTotal count every matching task, not just the page
	PendingTotal   int
	CompletedTotal int

	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// Task list states accepted by ListComplaintsInput.State
const (
	TaskStatePending   = "pending"
	TaskStateCompleted = "completed"
)

// canView reports whether p may read c
func canView(p *auth.Principal, c *model.Complaint) bool {
	switch {
	case p.Role.CanViewAll():
		return true
	case p.Role.CanSubmit():
		return c.SubmitterID == p.ID
	case p.Role.CanWorkTasks():
		return c.AssigneeID == p.ID
	default:
		return false
	}
}

func (uc *ComplaintUseCase) getVisible(ctx context.Context, p *auth.Principal, id int64) (*model.Complaint, error) {
	if p == nil {
		return nil, goerr.Wrap(ErrUnauthenticated, "principal is required")
	}

	c, err := uc.repo.Complaint().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrComplaintNotFound, "complaint not found", goerr.V(ComplaintIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get complaint", goerr.V(ComplaintIDKey, id))
	}

	if !canView(p, c) {
		return nil, goerr.Wrap(ErrAccessDenied, "complaint is not visible to the caller",
			goerr.V(ComplaintIDKey, id),
			goerr.V(UserIDKey, p.ID))
	}
	return c, nil
}

// Create files a new complaint in Pending status and notifies the approvers
func (uc *ComplaintUseCase) Create(ctx context.Context, p *auth.Principal, input CreateComplaintInput) (*model.Complaint, error) {
	if p == nil {
		return nil, goerr.Wrap(ErrUnauthenticated, "principal is required")
	}
	if !p.Role.CanSubmit() {
		return nil, goerr.Wrap(ErrRoleDenied, "only submitters can file complaints", goerr.V(RoleKey, p.Role))
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" || strings.TrimSpace(input.Category) == "" {
		return nil, goerr.Wrap(ErrValidation, "title, description and category are required")
	}

	category, location := model.SplitCategory(input.Category)
	if detail := strings.TrimSpace(input.LocationDetail); detail != "" {
		location = detail
	}
	if !uc.facility.HasCategory(category) {
		return nil, goerr.Wrap(ErrValidation, "unknown category", goerr.V("category", category))
	}
	category = uc.facility.CanonicalCategory(category)

	priority, err := types.ParsePriority(input.Priority)
	if err != nil {
		return nil, goerr.Wrap(ErrValidation, "invalid priority", goerr.V("priority", input.Priority))
	}

	if uc.limiter != nil {
		ok, retryAfter, err := uc.limiter.Allow(ctx, p.ID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to check submission rate", goerr.V(UserIDKey, p.ID))
		}
		if !ok {
			return nil, goerr.Wrap(ErrRateLimited, "too many complaints submitted",
				goerr.V(UserIDKey, p.ID),
				goerr.V(RetryAfterKey, int(math.Ceil(retryAfter.Seconds()))))
		}
	}

	created, err := uc.repo.Complaint().Create(ctx, &model.Complaint{
		SubmitterID:    p.ID,
		Title:          title,
		Description:    description,
		Category:       category,
		LocationDetail: location,
		Subcategory:    strings.TrimSpace(input.Subcategory),
		Floor:          strings.TrimSpace(input.Floor),
		Room:           strings.TrimSpace(input.Room),
		Priority:       priority,
		Status:         types.ComplaintStatusPending,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create complaint")
	}

	uc.notifyApprovers(ctx, created)
	return created, nil
}

func (uc *ComplaintUseCase) notifyApprovers(ctx context.Context, c *model.Complaint) {
	approvers, err := uc.repo.User().ListByRole(ctx, types.RoleApprover, false)
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to list approvers for submission notice")
		return
	}
	if len(approvers) == 0 {
		return
	}

	notifications := make([]*model.Notification, 0, len(approvers))
	for _, a := range approvers {
		notifications = append(notifications, notifySubmitted(a.ID, c))
	}
	if err := uc.repo.Notification().Create(ctx, notifications...); err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to store submission notice", goerr.V(ComplaintIDKey, c.ID)), "notification failed")
	}
}

// Get returns a complaint with its attachments and comments if p may see it
func (uc *ComplaintUseCase) Get(ctx context.Context, p *auth.Principal, id int64) (*ComplaintDetail, error) {
	c, err := uc.getVisible(ctx, p, id)
	if err != nil {
		return nil, err
	}

	var attachments []*model.Attachment
	var comments []*model.CommentView
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		attachments, err = uc.repo.Attachment().List(egCtx, id, nil)
		if err != nil {
			return goerr.Wrap(err, "failed to list attachments", goerr.V(ComplaintIDKey, id))
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		comments, err = listCommentViews(egCtx, uc.repo, id)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return &ComplaintDetail{
		Complaint:   c,
		Attachments: attachments,
		Comments:    comments,
	}, nil
}

func normalizePage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

func (input ListComplaintsInput) options() ([]interfaces.ListComplaintOption, error) {
	var opts []interfaces.ListComplaintOption
	if s := strings.TrimSpace(input.Status); s != "" {
		status, err := types.ParseComplaintStatus(s)
		if err != nil {
			return nil, goerr.Wrap(ErrValidation, "invalid status filter", goerr.V(StatusKey, s))
		}
		opts = append(opts, interfaces.WithStatus(status))
	}
	if input.Category != "" {
		opts = append(opts, interfaces.WithCategory(input.Category))
	}
	if input.Search != "" {
		opts = append(opts, interfaces.WithSearch(input.Search))
	}
	return opts, nil
}

// List returns the complaints visible to p: their own for a submitter and all
// complaints for an approver.
func (uc *ComplaintUseCase) List(ctx context.Context, p *auth.Principal, input ListComplaintsInput) (*ComplaintPage, error) {
	if p == nil {
		return nil, goerr.Wrap(ErrUnauthenticated, "principal is required")
	}

	opts, err := input.options()
	if err != nil {
		return nil, err
	}

	defaultLimit := DefaultApproverPageSize
	switch {
	case p.Role.CanViewAll():
	case p.Role.CanSubmit():
		opts = append(opts, interfaces.WithSubmitter(p.ID))
		defaultLimit = DefaultSubmitterPageSize
	default:
		return nil, goerr.Wrap(ErrRoleDenied, "role cannot list complaints", goerr.V(RoleKey, p.Role))
	}

	page, limit := normalizePage(input.Page, input.Limit, defaultLimit)

	total, err := uc.repo.Complaint().Count(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count complaints")
	}

	complaints, err := uc.repo.Complaint().List(ctx, append(opts, interfaces.WithPage(page, limit))...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list complaints")
	}

	return &ComplaintPage{
		Complaints: complaints,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// ListTasks returns the complaints assigned to the worker p, split into
// pending and completed work.
func (uc *ComplaintUseCase) ListTasks(ctx context.Context, p *auth.Principal, input ListComplaintsInput) (*TaskList, error) {
	if p == nil {
		return nil, goerr.Wrap(ErrUnauthenticated, "principal is required")
	}
	if !p.Role.CanWorkTasks() {
		return nil, goerr.Wrap(ErrRoleDenied, "only workers have tasks", goerr.V(RoleKey, p.Role))
	}

	opts, err := input.options()
	if err != nil {
		return nil, err
	}
	opts = append(opts, interfaces.WithAssignee(p.ID))

	state := strings.ToLower(strings.TrimSpace(input.State))
	if state != "" && state != TaskStatePending && state != TaskStateCompleted {
		return nil, goerr.Wrap(ErrValidation, "invalid task state", goerr.V("state", input.State))
	}

	pendingOpts := append(opts[:len(opts):len(opts)], interfaces.WithStatuses(types.TaskStatuses(false)...))
	completedOpts := append(opts[:len(opts):len(opts)], interfaces.WithStatuses(types.TaskStatuses(true)...))

	result := &TaskList{
		Pending:   []*model.Complaint{},
		Completed: []*model.Complaint{},
	}
	if result.PendingTotal, err = uc.repo.Complaint().Count(ctx, pendingOpts...); err != nil {
		return nil, goerr.Wrap(err, "failed to count pending tasks", goerr.V(UserIDKey, p.ID))
	}
	if result.CompletedTotal, err = uc.repo.Complaint().Count(ctx, completedOpts...); err != nil {
		return nil, goerr.Wrap(err, "failed to count completed tasks", goerr.V(UserIDKey, p.ID))
	}

	listOpts := opts
	switch state {
	case TaskStatePending:
		listOpts, result.Total = pendingOpts, result.PendingTotal
	case TaskStateCompleted:
		listOpts, result.Total = completedOpts, result.CompletedTotal
	default:
		result.Total = result.PendingTotal + result.CompletedTotal
	}

	result.Page, result.Limit = normalizePage(input.Page, input.Limit, DefaultTaskPageSize)
	result.TotalPages = (result.Total + result.Limit - 1) / result.Limit

	tasks, err := uc.repo.Complaint().List(ctx, append(listOpts, interfaces.WithPage(result.Page, result.Limit))...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tasks", goerr.V(UserIDKey, p.ID))
	}
	for _, t := range tasks {
		if t.Status.IsTaskDone() {
			result.Completed = append(result.Completed, t)
		} else {
			result.Pending = append(result.Pending, t)
		}
	}
	return result, nil
}

// AvailableActions lists the lifecycle actions p can run on the complaint now
func (uc *ComplaintUseCase) AvailableActions(ctx context.Context, p *auth.Principal, id int64) ([]types.LifecycleAction, error) {
	c, err := uc.getVisible(ctx, p, id)
	if err != nil {
		return nil, err
	}

	actions := model.AvailableActions(c, p.ID, p.Role)
	if actions == nil {
		actions = []types.LifecycleAction{}
	}
	return actions, nil
}
