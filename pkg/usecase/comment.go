package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/model/auth"
	"github.com/secmon-lab/themis/pkg/utils/errutil"
)

type CommentUseCase struct {
	repo interfaces.Repository
}

func NewCommentUseCase(repo interfaces.Repository) *CommentUseCase {
	return &CommentUseCase{repo: repo}
}

// canComment reports whether p takes part in the discussion of c
func canComment(p *auth.Principal, c *model.Complaint) bool {
	switch {
	case p.Role.CanApprove():
		return true
	case p.Role.CanSubmit():
		return c.SubmitterID == p.ID
	case p.Role.CanWorkTasks():
		return c.AssigneeID != "" && c.AssigneeID == p.ID
	default:
		return false
	}
}

// Add appends a comment and notifies the submitter and assignee other than the author
func (uc *CommentUseCase) Add(ctx context.Context, p *auth.Principal, complaintID int64, body string) (*model.CommentView, error) {
	if p == nil {
		return nil, goerr.Wrap(ErrUnauthenticated, "principal is required")
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, goerr.Wrap(ErrValidation, "comment is required", goerr.V(ComplaintIDKey, complaintID))
	}
	if utf8.RuneCountInString(body) > model.MaxCommentLength {
		return nil, goerr.Wrap(ErrValidation, "comment is too long",
			goerr.V(ComplaintIDKey, complaintID),
			goerr.V("max", model.MaxCommentLength))
	}

	c, err := uc.repo.Complaint().Get(ctx, complaintID)
	if err != nil {
		return nil, wrapComplaintGet(err, complaintID)
	}
	if !canComment(p, c) {
		return nil, goerr.Wrap(ErrAccessDenied, "caller is not a party of the complaint",
			goerr.V(ComplaintIDKey, complaintID),
			goerr.V(UserIDKey, p.ID))
	}

	created, err := uc.repo.Comment().Create(ctx, &model.Comment{
		ComplaintID: complaintID,
		AuthorID:    p.ID,
		Body:        body,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create comment", goerr.V(ComplaintIDKey, complaintID))
	}

	author, err := uc.repo.User().Get(ctx, p.ID)
	if err != nil {
		author = &model.User{ID: p.ID, Name: p.Name, Role: p.Role}
	}

	var notifications []*model.Notification
	for _, recipient := range []string{c.SubmitterID, c.AssigneeID} {
		if recipient == "" || recipient == p.ID {
			continue
		}
		notifications = append(notifications, notifyComment(recipient, c, author))
	}
	if len(notifications) > 0 {
		if err := uc.repo.Notification().Create(ctx, notifications...); err != nil {
			_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to store comment notice", goerr.V(ComplaintIDKey, complaintID)), "notification failed")
		}
	}

	return &model.CommentView{
		Comment:    created,
		AuthorName: author.Name,
		AuthorRole: author.Role,
	}, nil
}

// List returns the discussion of a complaint, oldest first
func (uc *CommentUseCase) List(ctx context.Context, p *auth.Principal, complaintID int64) ([]*model.CommentView, error) {
	if p == nil {
		return nil, goerr.Wrap(ErrUnauthenticated, "principal is required")
	}

	c, err := uc.repo.Complaint().Get(ctx, complaintID)
	if err != nil {
		return nil, wrapComplaintGet(err, complaintID)
	}
	if !canView(p, c) {
		return nil, goerr.Wrap(ErrAccessDenied, "complaint is not visible to the caller",
			goerr.V(ComplaintIDKey, complaintID),
			goerr.V(UserIDKey, p.ID))
	}

	return listCommentViews(ctx, uc.repo, complaintID)
}

func listCommentViews(ctx context.Context, repo interfaces.Repository, complaintID int64) ([]*model.CommentView, error) {
	comments, err := repo.Comment().List(ctx, complaintID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list comments", goerr.V(ComplaintIDKey, complaintID))
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, c := range comments {
		if _, ok := seen[c.AuthorID]; !ok {
			seen[c.AuthorID] = struct{}{}
			ids = append(ids, c.AuthorID)
		}
	}

	authors, err := repo.User().GetMany(ctx, ids)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve comment authors", goerr.V(ComplaintIDKey, complaintID))
	}

	views := make([]*model.CommentView, 0, len(comments))
	for _, c := range comments {
		view := &model.CommentView{Comment: c}
		if u, ok := authors[c.AuthorID]; ok {
			view.AuthorName = u.Name
			view.AuthorRole = u.Role
		}
		views = append(views, view)
	}
	return views, nil
}
