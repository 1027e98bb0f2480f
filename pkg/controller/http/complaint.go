package http

import (
	"net/http"

	"github.com/secmon-lab/themis/pkg/usecase"
)

type createComplaintRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	LocationDetail string `json:"location_detail"`
	Subcategory    string `json:"subcategory"`
	Floor          string `json:"floor"`
	Room           string `json:"room"`
	Priority       string `json:"priority"`
}

func (s *Server) handleCreateComplaint(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var req createComplaintRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	c, err := s.uc.Complaint.Create(r.Context(), p, usecase.CreateComplaintInput{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		LocationDetail: req.LocationDetail,
		Subcategory:    req.Subcategory,
		Floor:          req.Floor,
		Room:           req.Room,
		Priority:       req.Priority,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeData(w, r, http.StatusCreated, "Complaint submitted successfully", toComplaint(c))
}

func listInput(r *http.Request) usecase.ListComplaintsInput {
	q := r.URL.Query()
	return usecase.ListComplaintsInput{
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Page:     queryInt(r, "page"),
		Limit:    queryInt(r, "limit"),
		State:    q.Get("state"),
	}
}

func (s *Server) handleListComplaints(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	page, err := s.uc.Complaint.List(r.Context(), p, listInput(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, "", toComplaintPage(page))
}

func (s *Server) handleGetComplaint(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := complaintID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	detail, err := s.uc.Complaint.Get(r.Context(), p, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, "", toComplaintDetail(detail))
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	tasks, err := s.uc.Complaint.ListTasks(r.Context(), p, listInput(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, "", toTaskList(tasks))
}

func (s *Server) handleAvailableActions(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := complaintID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	actions, err := s.uc.Complaint.AvailableActions(r.Context(), p, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, "", map[string]any{"actions": actions})
}

type addCommentRequest struct {
	Comment string `json:"comment"`
	Body    string `json:"body"`
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := complaintID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var req addCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	body := req.Comment
	if body == "" {
		body = req.Body
	}

	view, err := s.uc.Comment.Add(r.Context(), p, id, body)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeData(w, r, http.StatusCreated, "Comment added successfully", toComment(view))
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := complaintID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	views, err := s.uc.Comment.List(r.Context(), p, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, "", toComments(views))
}
