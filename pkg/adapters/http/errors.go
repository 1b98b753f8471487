package http

import (
	"errors"
	"net/http"

	"github.com/aretw0/onboard/internal/runtime"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/go-chi/chi/v5/middleware"
)

type problem struct {
	Error string `json:"error"`
}

// statusOf maps engine errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrUnknownField):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrFieldKind),
		errors.Is(err, domain.ErrInvalidOption),
		errors.Is(err, runtime.ErrInputTooLarge),
		errors.Is(err, runtime.ErrInvalidUTF8):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrTerminal),
		errors.Is(err, domain.ErrSubmitRequired),
		errors.Is(err, domain.ErrNotSubmittable),
		errors.Is(err, domain.ErrSubmissionPending):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"err", err)
		msg = http.StatusText(status)
	}
	s.writeProblem(w, status, msg)
}

func (s *Server) writeProblem(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, problem{Error: msg})
}
