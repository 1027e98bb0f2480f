package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/utils/logging"
)

type AuthUseCase = usecase.AuthUseCaseInterface

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
	authUC AuthUseCase
	debug  bool
}

type Options func(*Server)

// WithAuth sets the authenticator for /api routes. Without it every API
// request is rejected as unauthenticated.
func WithAuth(authUC AuthUseCase) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

// WithDebug exposes internal error messages in 500 responses
func WithDebug(enabled bool) Options {
	return func(s *Server) {
		s.debug = enabled
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
		authUC: uc.Auth,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware(s.authUC))

		r.Get("/me", s.handleMe)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.handleListNotifications)
			r.Put("/read-all", s.handleMarkAllRead)
			r.Put("/{notificationID}/read", s.handleMarkRead)
		})

		r.Route("/complaints/{complaintID}", func(r chi.Router) {
			r.Get("/actions", s.handleAvailableActions)
			r.Get("/comments", s.handleListComments)
		})

		r.Route("/resident", func(r chi.Router) {
			r.Use(requireRole(types.RoleSubmitter))
			r.Post("/complaints", s.handleCreateComplaint)
			r.Get("/complaints", s.handleListComplaints)
			r.Get("/complaints/{complaintID}", s.handleGetComplaint)
			r.Post("/complaints/{complaintID}/attachments", s.handleUploadEvidence)
			r.Post("/complaints/{complaintID}/comments", s.handleAddComment)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireRole(types.RoleApprover))
			r.Get("/complaints", s.handleListComplaints)
			r.Get("/complaints/{complaintID}", s.handleGetComplaint)
			r.Post("/complaints/{complaintID}/approve", s.handleApprove)
			r.Post("/complaints/{complaintID}/reject", s.handleReject)
			r.Post("/complaints/{complaintID}/assign", s.handleAssign)
			r.Post("/complaints/{complaintID}/verify", s.handleVerify)
			r.Post("/complaints/{complaintID}/comments", s.handleAddComment)
			r.Get("/workers", s.handleListWorkers)
		})

		r.Route("/worker", func(r chi.Router) {
			r.Use(requireRole(types.RoleAssignee))
			r.Get("/tasks", s.handleListTasks)
			r.Get("/tasks/{complaintID}", s.handleGetComplaint)
			r.Put("/tasks/{complaintID}/status", s.handleUpdateTaskStatus)
			r.Post("/tasks/{complaintID}/proof", s.handleUploadProof)
			r.Post("/tasks/{complaintID}/comments", s.handleAddComment)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusNotFound, envelope{Message: "Route not found"})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, envelope{Success: true, Message: "ok"})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
