package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	list, err := s.uc.Notification.List(r.Context(), p, queryBool(r, "unread_only"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, "", toNotifications(list))
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	id := model.NotificationID(chi.URLParam(r, "notificationID"))
	if err := s.uc.Notification.MarkRead(r.Context(), p, id); err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, envelope{Success: true, Message: "Notification marked as read"})
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	count, err := s.uc.Notification.MarkAllRead(r.Context(), p)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, "All notifications marked as read", map[string]int{"updated": count})
}
