package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/utils/errutil"
	"github.com/secmon-lab/themis/pkg/utils/safe"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body envelope) {
	data, err := json.Marshal(body)
	if err != nil {
		_ = errutil.Handle(r.Context(), goerr.Wrap(err, "failed to marshal response"), "response encoding failed")
		http.Error(w, `{"success":false,"message":"Internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

func writeData(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	writeJSON(w, r, status, envelope{Success: true, Message: message, Data: data})
}

// statusOf maps use case errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, usecase.ErrValidation),
		errors.Is(err, usecase.ErrTooManyFiles),
		errors.Is(err, usecase.ErrUnsupportedFileType),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, usecase.ErrRoleDenied),
		errors.Is(err, usecase.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, usecase.ErrComplaintNotFound),
		errors.Is(err, usecase.ErrAttachmentNotFound),
		errors.Is(err, usecase.ErrNotificationNotFound),
		errors.Is(err, usecase.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrStatusConflict):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides internal failures unless debug is enabled
func publicMessage(err error, status int, debug bool) string {
	if status >= http.StatusInternalServerError && !debug {
		return "Internal server error"
	}
	return err.Error()
}

func writeError(w http.ResponseWriter, r *http.Request, err error, debug bool) {
	ctx := r.Context()
	status := statusOf(err)

	if status >= http.StatusInternalServerError {
		_ = errutil.Handle(ctx, err, "request failed")
	} else {
		errutil.Warn(ctx, err, "request rejected")
	}

	if status == http.StatusTooManyRequests {
		var ge *goerr.Error
		if errors.As(err, &ge) {
			if sec, ok := ge.Values()[usecase.RetryAfterKey].(int); ok && sec > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(sec))
			}
		}
	}

	writeJSON(w, r, status, envelope{Message: publicMessage(err, status, debug)})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, err, s.debug)
}
