package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/onboard/internal/logging"
	"github.com/aretw0/onboard/pkg/attachment"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/google/uuid"
)

// Engine is the wizard state machine. It is stateless itself: every operation
// takes a State and returns the next one, leaving the input untouched.
// Callers serialise operations per session.
type Engine struct {
	graph        *Graph
	validator    *Validator
	attachments  *attachment.Manager
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	maxInputSize int
	now          func() time.Time
	newID        func() string
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger configures a logger for the Engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithAttachments sets the attachment manager owning preview handles.
func WithAttachments(m *attachment.Manager) Option {
	return func(e *Engine) {
		e.attachments = m
	}
}

// WithGraph replaces the registration step graph.
func WithGraph(g *Graph) Option {
	return func(e *Engine) {
		e.graph = g
	}
}

// WithMaxInputSize bounds the size of a single text answer.
func WithMaxInputSize(n int) Option {
	return func(e *Engine) {
		e.maxInputSize = n
	}
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine for the registration wizard.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		graph:        RegistrationGraph(),
		validator:    NewValidator(),
		logger:       logging.NewNop(),
		maxInputSize: DefaultMaxInputSize,
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.attachments == nil {
		e.attachments = attachment.NewManager(nil, attachment.WithLogger(e.logger))
	}
	return e
}

// Graph exposes the step graph the engine navigates.
func (e *Engine) Graph() *Graph {
	return e.graph
}

// Attachments exposes the attachment manager.
func (e *Engine) Attachments() *attachment.Manager {
	return e.attachments
}

// Start opens a fresh wizard: first step, every field at its default and a
// new instance identifier.
func (e *Engine) Start(ctx context.Context, sessionID string) *domain.State {
	state := domain.NewState(sessionID, e.newID(), e.graph.First())
	e.logger.Debug("wizard opened", "session_id", sessionID, "instance", state.Instance)
	e.emitStepEnter(ctx, state)
	return state
}

// Reset returns a fresh wizard for the same session. The previews of state
// are revoked when the fresh wizard is committed. Late responses addressed to
// the old instance are discarded.
func (e *Engine) Reset(ctx context.Context, state *domain.State) *domain.State {
	tx := e.attachments.Begin()
	tx.ReleaseAll(state.Snapshot().Answers)
	next := e.Start(ctx, state.SessionID)
	next.Effects = tx
	return next
}

// Close marks the wizard closed. Its previews are revoked on commit.
func (e *Engine) Close(ctx context.Context, state *domain.State) *domain.State {
	next := state.Snapshot()
	e.effects(next).ReleaseAll(next.Answers)
	if next.Status != domain.StatusClosed && !next.Terminal() {
		e.emitStepLeave(ctx, next)
	}
	next.Status = domain.StatusClosed
	next.Pending = nil
	e.logger.Debug("wizard closed", "session_id", next.SessionID, "instance", next.Instance)
	return next
}

// Commit settles the preview effects staged on state once it is persisted.
// Operations return states with staged effects; every such state must be
// either committed or rolled back.
func (e *Engine) Commit(state *domain.State) {
	if state != nil && state.Effects != nil {
		state.Effects.Commit()
		state.Effects = nil
	}
}

// Rollback undoes the preview effects staged on a state that could not be persisted.
func (e *Engine) Rollback(state *domain.State) {
	if state != nil && state.Effects != nil {
		state.Effects.Rollback()
		state.Effects = nil
	}
}

// effects returns the transaction staged on state, starting one if needed.
func (e *Engine) effects(state *domain.State) *attachment.Tx {
	if tx, ok := state.Effects.(*attachment.Tx); ok {
		return tx
	}
	tx := e.attachments.Begin()
	state.Effects = tx
	return tx
}

func (e *Engine) event(state *domain.State, typ domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: e.now(),
		Type:      typ,
		SessionID: state.SessionID,
	}
}

func (e *Engine) emitStepEnter(ctx context.Context, state *domain.State) {
	if e.hooks.OnStepEnter != nil {
		e.hooks.OnStepEnter(ctx, &domain.StepEvent{
			EventBase: e.event(state, domain.EventStepEnter),
			StepID:    state.CurrentStep,
		})
	}
}

func (e *Engine) emitStepLeave(ctx context.Context, state *domain.State) {
	if e.hooks.OnStepLeave != nil {
		e.hooks.OnStepLeave(ctx, &domain.StepEvent{
			EventBase: e.event(state, domain.EventStepLeave),
			StepID:    state.CurrentStep,
		})
	}
}

func (e *Engine) emitValidationFailed(ctx context.Context, state *domain.State) {
	if e.hooks.OnValidationFailed != nil {
		e.hooks.OnValidationFailed(ctx, &domain.ValidationEvent{
			EventBase: e.event(state, domain.EventValidationFailed),
			StepID:    state.CurrentStep,
			Message:   state.Error,
		})
	}
}

func (e *Engine) emitSubmit(ctx context.Context, state *domain.State, sub *domain.Submission) {
	if e.hooks.OnSubmit != nil {
		e.hooks.OnSubmit(ctx, &domain.SubmitEvent{
			EventBase:    e.event(state, domain.EventSubmit),
			SubmissionID: sub.ID,
			Files:        len(sub.Files),
		})
	}
}

func (e *Engine) emitSubmitResult(ctx context.Context, state *domain.State, sub *domain.Submission, message string, isError bool) {
	if e.hooks.OnSubmitResult != nil {
		e.hooks.OnSubmitResult(ctx, &domain.SubmitEvent{
			EventBase:    e.event(state, domain.EventSubmitResult),
			SubmissionID: sub.ID,
			Files:        len(sub.Files),
			Duration:     e.now().Sub(sub.CreatedAt),
			IsError:      isError,
			Message:      message,
		})
	}
}
