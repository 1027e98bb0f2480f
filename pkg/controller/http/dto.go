package http

import (
	"time"

	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/usecase"
)

type complaintResponse struct {
	ID              int64                 `json:"id"`
	SubmitterID     string                `json:"submitter_id"`
	AssigneeID      string                `json:"assignee_id,omitempty"`
	ApproverID      string                `json:"approver_id,omitempty"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Category        string                `json:"category"`
	LocationDetail  string                `json:"location_detail,omitempty"`
	DisplayCategory string                `json:"display_category"`
	Subcategory     string                `json:"subcategory,omitempty"`
	Floor           string                `json:"floor,omitempty"`
	Room            string                `json:"room,omitempty"`
	Priority        types.Priority        `json:"priority"`
	Status          types.ComplaintStatus `json:"status"`
	RejectionReason string                `json:"rejection_reason,omitempty"`
	Resolution      string                `json:"resolution,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	ApprovedAt      *time.Time            `json:"approved_at,omitempty"`
	AssignedAt      *time.Time            `json:"assigned_at,omitempty"`
	ResolvedAt      *time.Time            `json:"resolved_at,omitempty"`
	RejectedAt      *time.Time            `json:"rejected_at,omitempty"`
	TimeTakenHours  *float64              `json:"time_taken_hours,omitempty"`
}

func toComplaint(c *model.Complaint) *complaintResponse {
	return &complaintResponse{
		ID:              c.ID,
		SubmitterID:     c.SubmitterID,
		AssigneeID:      c.AssigneeID,
		ApproverID:      c.ApproverID,
		Title:           c.Title,
		Description:     c.Description,
		Category:        c.Category,
		LocationDetail:  c.LocationDetail,
		DisplayCategory: c.DisplayCategory(),
		Subcategory:     c.Subcategory,
		Floor:           c.Floor,
		Room:            c.Room,
		Priority:        c.Priority,
		Status:          c.Status,
		RejectionReason: c.RejectionReason,
		Resolution:      c.Resolution,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		ApprovedAt:      c.ApprovedAt,
		AssignedAt:      c.AssignedAt,
		ResolvedAt:      c.ResolvedAt,
		RejectedAt:      c.RejectedAt,
		TimeTakenHours:  c.TimeTakenHours,
	}
}

func toComplaints(list []*model.Complaint) []*complaintResponse {
	resp := make([]*complaintResponse, 0, len(list))
	for _, c := range list {
		resp = append(resp, toComplaint(c))
	}
	return resp
}

type attachmentResponse struct {
	ID            string    `json:"id"`
	ComplaintID   int64     `json:"complaint_id"`
	Filename      string    `json:"filename"`
	MimeType      string    `json:"mime_type"`
	Size          int64     `json:"size"`
	UploaderID    string    `json:"uploader_id"`
	IsProofOfWork bool      `json:"is_proof_of_work"`
	CreatedAt     time.Time `json:"created_at"`
}

func toAttachments(list []*model.Attachment) []*attachmentResponse {
	resp := make([]*attachmentResponse, 0, len(list))
	for _, a := range list {
		resp = append(resp, &attachmentResponse{
			ID:            a.ID.String(),
			ComplaintID:   a.ComplaintID,
			Filename:      a.Filename,
			MimeType:      a.MimeType,
			Size:          a.Size,
			UploaderID:    a.UploaderID,
			IsProofOfWork: a.IsProofOfWork,
			CreatedAt:     a.CreatedAt,
		})
	}
	return resp
}

type commentResponse struct {
	ID         string     `json:"id"`
	AuthorID   string     `json:"author_id"`
	AuthorName string     `json:"author_name"`
	AuthorRole types.Role `json:"author_role"`
	Comment    string     `json:"comment"`
	CreatedAt  time.Time  `json:"created_at"`
}

func toComment(v *model.CommentView) *commentResponse {
	return &commentResponse{
		ID:         string(v.ID),
		AuthorID:   v.AuthorID,
		AuthorName: v.AuthorName,
		AuthorRole: v.AuthorRole,
		Comment:    v.Body,
		CreatedAt:  v.CreatedAt,
	}
}

func toComments(list []*model.CommentView) []*commentResponse {
	resp := make([]*commentResponse, 0, len(list))
	for _, v := range list {
		resp = append(resp, toComment(v))
	}
	return resp
}

type complaintDetailResponse struct {
	*complaintResponse
	Attachments []*attachmentResponse `json:"attachments"`
	ProofOfWork []*attachmentResponse `json:"proof_of_work"`
	Comments    []*commentResponse    `json:"comments"`
}

func toComplaintDetail(d *usecase.ComplaintDetail) *complaintDetailResponse {
	var evidence, proof []*model.Attachment
	for _, a := range d.Attachments {
		if a.IsProofOfWork {
			proof = append(proof, a)
		} else {
			evidence = append(evidence, a)
		}
	}
	return &complaintDetailResponse{
		complaintResponse: toComplaint(d.Complaint),
		Attachments:       toAttachments(evidence),
		ProofOfWork:       toAttachments(proof),
		Comments:          toComments(d.Comments),
	}
}

type paginationResponse struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	Total       int `json:"total"`
	Limit       int `json:"limit"`
}

type complaintPageResponse struct {
	Complaints []*complaintResponse `json:"complaints"`
	Pagination paginationResponse   `json:"pagination"`
}

func toComplaintPage(p *usecase.ComplaintPage) *complaintPageResponse {
	return &complaintPageResponse{
		Complaints: toComplaints(p.Complaints),
		Pagination: paginationResponse{
			CurrentPage: p.Page,
			TotalPages:  p.TotalPages,
			Total:       p.Total,
			Limit:       p.Limit,
		},
	}
}

type taskListResponse struct {
	Pending        []*complaintResponse `json:"pending"`
	Completed      []*complaintResponse `json:"completed"`
	PendingTotal   int                  `json:"pending_total"`
	CompletedTotal int                  `json:"completed_total"`
	Total          int                  `json:"total"`
	Pagination     paginationResponse   `json:"pagination"`
}

func toTaskList(t *usecase.TaskList) *taskListResponse {
	return &taskListResponse{
		Pending:        toComplaints(t.Pending),
		Completed:      toComplaints(t.Completed),
		PendingTotal:   t.PendingTotal,
		CompletedTotal: t.CompletedTotal,
		Total:          t.Total,
		Pagination: paginationResponse{
			CurrentPage: t.Page,
			TotalPages:  t.TotalPages,
			Total:       t.Total,
			Limit:       t.Limit,
		},
	}
}

type notificationResponse struct {
	ID          string                 `json:"id"`
	ComplaintID int64                  `json:"complaint_id"`
	Title       string                 `json:"title"`
	Message     string                 `json:"message"`
	Type        types.NotificationType `json:"type"`
	IsRead      bool                   `json:"is_read"`
	CreatedAt   time.Time              `json:"created_at"`
}

func toNotifications(list []*model.Notification) []*notificationResponse {
	resp := make([]*notificationResponse, 0, len(list))
	for _, n := range list {
		resp = append(resp, &notificationResponse{
			ID:          n.ID.String(),
			ComplaintID: n.ComplaintID,
			Title:       n.Title,
			Message:     n.Message,
			Type:        n.Type,
			IsRead:      n.IsRead,
			CreatedAt:   n.CreatedAt,
		})
	}
	return resp
}

type userResponse struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Email  string     `json:"email,omitempty"`
	Role   types.Role `json:"role"`
	Active bool       `json:"active"`
}

func toUser(u *model.User) *userResponse {
	return &userResponse{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Active: u.Active,
	}
}

func toUsers(list []*model.User) []*userResponse {
	resp := make([]*userResponse, 0, len(list))
	for _, u := range list {
		resp = append(resp, toUser(u))
	}
	return resp
}
