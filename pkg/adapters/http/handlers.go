package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aretw0/onboard/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// sniffLen is the number of bytes http.DetectContentType looks at.
const sniffLen = 512

func (s *Server) open(w http.ResponseWriter, r *http.Request) {
	state, err := s.wizards.Open(r.Context(), sessionParam(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeState(w, http.StatusCreated, state)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	state, err := s.wizards.State(r.Context(), sessionParam(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeState(w, http.StatusOK, state)
}

func (s *Server) close(w http.ResponseWriter, r *http.Request) {
	if err := s.wizards.Close(r.Context(), sessionParam(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) requestClose(w http.ResponseWriter, r *http.Request) {
	if err := s.wizards.RequestClose(r.Context(), sessionParam(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) registration(w http.ResponseWriter, r *http.Request) {
	reg, err := s.wizards.Registration(r.Context(), sessionParam(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, reg)
}

type setRequest struct {
	Value string `json:"value"`
}

func (s *Server) set(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "field")
	field, ok := domain.LookupField(name)
	if !ok {
		s.writeError(w, r, fmt.Errorf("%w: %s", domain.ErrUnknownField, name))
		return
	}

	var body setRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&body); err != nil {
		s.writeProblem(w, http.StatusBadRequest, "invalid request body")
		s.logger.Warn("set: invalid request body", "err", err)
		return
	}

	state, err := s.wizards.Set(r.Context(), sessionParam(r), name, domain.Value{Kind: field.Kind, Text: body.Value})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeState(w, http.StatusOK, state)
}

func (s *Server) attach(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "field")
	if r.ContentLength > s.maxUploadBytes {
		s.writeProblem(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", s.maxUploadBytes))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeProblem(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", s.maxUploadBytes))
			return
		}
		s.writeProblem(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeProblem(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	mediaType := header.Header.Get("Content-Type")
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = http.DetectContentType(data[:min(len(data), sniffLen)])
	}

	state, err := s.wizards.Attach(r.Context(), sessionParam(r), name, domain.NewAttachment(header.Filename, mediaType, data))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeState(w, http.StatusOK, state)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	state, err := s.wizards.Remove(r.Context(), sessionParam(r), chi.URLParam(r, "field"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeState(w, http.StatusOK, state)
}

func (s *Server) continueStep(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, s.wizards.Continue, http.StatusOK)
}

func (s *Server) back(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, s.wizards.Back, http.StatusOK)
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, s.wizards.Submit, http.StatusAccepted)
}

// step runs a navigation operation. A step that fails validation answers 422
// with the state, so the inline message can be rendered.
func (s *Server) step(w http.ResponseWriter, r *http.Request, op func(context.Context, string) (*domain.State, error), okStatus int) {
	state, err := op(r.Context(), sessionParam(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := okStatus
	if state.Error != "" {
		status = http.StatusUnprocessableEntity
	}
	s.writeState(w, status, state)
}

type stepView struct {
	ID     domain.StepID  `json:"id"`
	Title  string         `json:"title"`
	Fields []domain.Field `json:"fields"`
}

func (s *Server) steps(w http.ResponseWriter, r *http.Request) {
	out := make([]stepView, 0, len(domain.StepOrder))
	for _, id := range domain.StepOrder {
		out = append(out, stepView{ID: id, Title: id.Title(), Fields: domain.FieldsOf(id)})
	}
	s.writeJSON(w, http.StatusOK, out)
}
