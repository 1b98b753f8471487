// Package http exposes registration wizards as a REST API with an SSE change
// stream. Wizards are addressed by the host-chosen session id.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aretw0/onboard/internal/logging"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/redact"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultMaxUploadBytes bounds a single attachment upload.
const DefaultMaxUploadBytes int64 = 10 << 20

// Wizards is the host surface the API drives.
type Wizards interface {
	Open(ctx context.Context, sessionID string) (*domain.State, error)
	Close(ctx context.Context, sessionID string) error
	RequestClose(ctx context.Context, sessionID string) error
	State(ctx context.Context, sessionID string) (*domain.State, error)
	Registration(ctx context.Context, sessionID string) (*domain.Registration, error)
	Set(ctx context.Context, sessionID, field string, value domain.Value) (*domain.State, error)
	Attach(ctx context.Context, sessionID, field string, file *domain.Attachment) (*domain.State, error)
	Remove(ctx context.Context, sessionID, field string) (*domain.State, error)
	Continue(ctx context.Context, sessionID string) (*domain.State, error)
	Back(ctx context.Context, sessionID string) (*domain.State, error)
	Submit(ctx context.Context, sessionID string) (*domain.State, error)
}

// Server serves the wizard API.
type Server struct {
	wizards        Wizards
	streams        *StreamManager
	redactor       *redact.Redactor
	previews       http.Handler
	maxUploadBytes int64
	logger         *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStreams sets the stream manager feeding the SSE endpoint. It must be
// the one registered as state listener on the host.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.streams = sm
	}
}

// WithRedactor sets the redactor applied to every state leaving the API.
func WithRedactor(r *redact.Redactor) Option {
	return func(s *Server) {
		s.redactor = r
	}
}

// WithPreviews mounts the preview handler under /previews.
func WithPreviews(h http.Handler) Option {
	return func(s *Server) {
		s.previews = h
	}
}

// WithMaxUploadBytes bounds attachment uploads.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		s.maxUploadBytes = n
	}
}

// NewServer creates a Server for wizards.
func NewServer(wizards Wizards, opts ...Option) *Server {
	s := &Server{
		wizards:        wizards,
		maxUploadBytes: DefaultMaxUploadBytes,
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.redactor == nil {
		s.redactor, _ = redact.New()
	}
	if s.streams == nil {
		s.streams = NewStreamManager(s.redactor, s.logger)
	}
	return s
}

// NewHandler creates the HTTP handler for wizards.
func NewHandler(wizards Wizards, opts ...Option) http.Handler {
	return NewServer(wizards, opts...).Routes()
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/healthz", s.health)
	r.Get("/steps", s.steps)
	if s.previews != nil {
		r.Mount("/previews", http.StripPrefix("/previews", s.previews))
	}

	r.Route("/wizards/{sessionID}", func(r chi.Router) {
		r.Post("/", s.open)
		r.Get("/", s.get)
		r.Delete("/", s.close)
		r.Post("/close", s.requestClose)
		r.Get("/registration", s.registration)
		r.Put("/answers/{field}", s.set)
		r.Put("/files/{field}", s.attach)
		r.Delete("/files/{field}", s.remove)
		r.Post("/continue", s.continueStep)
		r.Post("/back", s.back)
		r.Post("/submit", s.submit)
		r.Get("/events", s.events)
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionParam(r *http.Request) string {
	return chi.URLParam(r, "sessionID")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeState(w http.ResponseWriter, status int, state *domain.State) {
	s.writeJSON(w, status, newStateView(s.redactor.State(state)))
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
