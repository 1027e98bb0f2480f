package http

import "net/http"

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	u, err := s.uc.User.Me(r.Context(), p)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, "", toUser(u))
}

func (s *Server) handleListWorkers(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	workers, err := s.uc.User.ListWorkers(r.Context(), p)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, "", toUsers(workers))
}
