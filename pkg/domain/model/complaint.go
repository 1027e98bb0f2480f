package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

// categorySeparator joins a category and its location detail in the legacy
// single-string representation, e.g. "Washroom - T2".
const categorySeparator = " - "

// Complaint is a submitted grievance and the unit the lifecycle engine works on
type Complaint struct {
	ID              int64
	SubmitterID     string
	AssigneeID      string // empty until assigned
	ApproverID      string // approver who accepted the complaint
	Title           string
	Description     string
	Category        string
	LocationDetail  string
	Subcategory     string
	Floor           string
	Room            string
	Priority        types.Priority
	Status          types.ComplaintStatus
	RejectionReason string
	Resolution      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ApprovedAt      *time.Time
	AssignedAt      *time.Time
	ResolvedAt      *time.Time
	RejectedAt      *time.Time
	TimeTakenHours  *float64
}

// DisplayCategory renders the category the way older clients expect it
func (c *Complaint) DisplayCategory() string {
	if c.LocationDetail == "" {
		return c.Category
	}
	return c.Category + categorySeparator + c.LocationDetail
}

// SplitCategory separates a legacy "Base - Detail" category string.
func SplitCategory(s string) (base, detail string) {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, categorySeparator); idx >= 0 {
		return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+len(categorySeparator):])
	}
	return s, ""
}

// MatchCategory reports whether the complaint belongs to the category filter.
// The filter is matched as a case-insensitive prefix of the stored category so
// that "Washroom" also finds records stored as "Washroom - T2".
func (c *Complaint) MatchCategory(filter string) bool {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(c.Category), filter)
}

// MatchText reports whether the query occurs in the title or description
func (c *Complaint) MatchText(query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Title), query) ||
		strings.Contains(strings.ToLower(c.Description), query)
}

// IsParticipant reports whether userID is the submitter or the assignee
func (c *Complaint) IsParticipant(userID string) bool {
	return userID != "" && (c.SubmitterID == userID || c.AssigneeID == userID)
}

// CheckInvariants verifies the relations between status and the derived fields.
func (c *Complaint) CheckInvariants() error {
	if !c.Status.IsValid() {
		return goerr.New("unknown complaint status", goerr.V("status", c.Status))
	}
	if c.Status.RequiresAssignee() && c.AssigneeID == "" {
		return goerr.New("assignee is required for status", goerr.V("status", c.Status))
	}
	if c.Status == types.ComplaintStatusResolved {
		if c.ResolvedAt == nil || c.TimeTakenHours == nil {
			return goerr.New("resolved complaint lacks resolution time")
		}
	} else if c.ResolvedAt != nil || c.TimeTakenHours != nil {
		return goerr.New("resolution time set on unresolved complaint", goerr.V("status", c.Status))
	}
	if (c.Status == types.ComplaintStatusRejected) != (c.RejectionReason != "") {
		return goerr.New("rejection reason does not match status", goerr.V("status", c.Status))
	}
	return nil
}

// HoursBetween returns the elapsed hours from start to end
func HoursBetween(start, end time.Time) float64 {
	return end.Sub(start).Seconds() / 3600
}

// ComplaintPatch holds the fields a lifecycle transition writes. Nil fields
// are left untouched.
type ComplaintPatch struct {
	Status          types.ComplaintStatus
	AssigneeID      *string
	ApproverID      *string
	RejectionReason *string
	Resolution      *string
	ApprovedAt      *time.Time
	AssignedAt      *time.Time
	ResolvedAt      *time.Time
	RejectedAt      *time.Time
	TimeTakenHours  *float64
}

// Apply writes the patch onto c
func (p *ComplaintPatch) Apply(c *Complaint) {
	if p.Status != "" {
		c.Status = p.Status
	}
	if p.AssigneeID != nil {
		c.AssigneeID = *p.AssigneeID
	}
	if p.ApproverID != nil {
		c.ApproverID = *p.ApproverID
	}
	if p.RejectionReason != nil {
		c.RejectionReason = *p.RejectionReason
	}
	if p.Resolution != nil {
		c.Resolution = *p.Resolution
	}
	if p.ApprovedAt != nil {
		t := *p.ApprovedAt
		c.ApprovedAt = &t
	}
	if p.AssignedAt != nil {
		t := *p.AssignedAt
		c.AssignedAt = &t
	}
	if p.ResolvedAt != nil {
		t := *p.ResolvedAt
		c.ResolvedAt = &t
	}
	if p.RejectedAt != nil {
		t := *p.RejectedAt
		c.RejectedAt = &t
	}
	if p.TimeTakenHours != nil {
		h := *p.TimeTakenHours
		c.TimeTakenHours = &h
	}
}

// CopyComplaint returns a deep copy of c
func CopyComplaint(c *Complaint) *Complaint {
	if c == nil {
		return nil
	}
	copied := *c
	copied.ApprovedAt = copyTime(c.ApprovedAt)
	copied.AssignedAt = copyTime(c.AssignedAt)
	copied.ResolvedAt = copyTime(c.ResolvedAt)
	copied.RejectedAt = copyTime(c.RejectedAt)
	if c.TimeTakenHours != nil {
		h := *c.TimeTakenHours
		copied.TimeTakenHours = &h
	}
	return &copied
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
