package http

import (
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/usecase"
)

type transitionFunc func(r *http.Request, id int64) (*model.Complaint, error)

// transition runs a lifecycle operation on the complaint in the URL
func (s *Server) transition(w http.ResponseWriter, r *http.Request, message string, run transitionFunc) {
	id, err := complaintID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	c, err := run(r, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, message, toComplaint(c))
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, "Complaint approved successfully", func(r *http.Request, id int64) (*model.Complaint, error) {
		p, err := principal(r)
		if err != nil {
			return nil, err
		}
		return s.uc.Lifecycle.Approve(r.Context(), p, id)
	})
}

type rejectRequest struct {
	RejectionReason string `json:"rejection_reason"`
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, "Complaint rejected", func(r *http.Request, id int64) (*model.Complaint, error) {
		p, err := principal(r)
		if err != nil {
			return nil, err
		}
		var req rejectRequest
		if err := decodeJSON(r, &req); err != nil {
			return nil, err
		}
		return s.uc.Lifecycle.Reject(r.Context(), p, id, req.RejectionReason)
	})
}

type assignRequest struct {
	WorkerID string `json:"worker_id"`
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, "Complaint assigned successfully", func(r *http.Request, id int64) (*model.Complaint, error) {
		p, err := principal(r)
		if err != nil {
			return nil, err
		}
		var req assignRequest
		if err := decodeJSON(r, &req); err != nil {
			return nil, err
		}
		return s.uc.Lifecycle.Assign(r.Context(), p, id, req.WorkerID)
	})
}

type verifyRequest struct {
	Action   string `json:"action"`
	Feedback string `json:"feedback"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, "Verification recorded", func(r *http.Request, id int64) (*model.Complaint, error) {
		p, err := principal(r)
		if err != nil {
			return nil, err
		}
		var req verifyRequest
		if err := decodeJSON(r, &req); err != nil {
			return nil, err
		}

		switch strings.ToLower(strings.TrimSpace(req.Action)) {
		case "approve":
			return s.uc.Lifecycle.Verify(r.Context(), p, id, true, "")
		case "reject":
			return s.uc.Lifecycle.Verify(r.Context(), p, id, false, req.Feedback)
		default:
			return nil, goerr.Wrap(usecase.ErrValidation, "action must be approve or reject", goerr.V("action", req.Action))
		}
	})
}

type updateStatusRequest struct {
	Status     string `json:"status"`
	Resolution string `json:"resolution"`
}

func (s *Server) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, "Task status updated successfully", func(r *http.Request, id int64) (*model.Complaint, error) {
		p, err := principal(r)
		if err != nil {
			return nil, err
		}
		var req updateStatusRequest
		if err := decodeJSON(r, &req); err != nil {
			return nil, err
		}

		status, err := types.ParseComplaintStatus(req.Status)
		if err != nil {
			return nil, goerr.Wrap(usecase.ErrValidation, "invalid status", goerr.V(usecase.StatusKey, req.Status))
		}
		return s.uc.Lifecycle.UpdateTaskStatus(r.Context(), p, id, status, req.Resolution)
	})
}
