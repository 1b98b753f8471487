// Package host mounts wizards on behalf of a host container.
//
// A Host maps the container's open/close contract onto the wizard engine:
// opening always yields a fresh wizard, closing tears it down and releases
// every preview, and the wizard asks to be closed through RequestClose.
// Submissions run in the background, outside the session lock, so the rest
// of the wizard stays usable while the registration endpoint answers.
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/onboard/internal/logging"
	"github.com/aretw0/onboard/internal/runtime"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/ports"
	"github.com/aretw0/onboard/pkg/session"
)

// DefaultSubmitTimeout bounds one call to the registration endpoint.
const DefaultSubmitTimeout = 30 * time.Second

// OpenChangeFunc is invoked whenever the host should flip the open flag of a wizard.
type OpenChangeFunc func(sessionID string, open bool)

// StateListener observes every persisted transition of a wizard. next is nil
// when the wizard was removed.
type StateListener func(sessionID string, prev, next *domain.State)

// Host coordinates the engine, the session store and the outbound collaborators.
type Host struct {
	engine    *runtime.Engine
	sessions  *session.Manager
	submitter ports.Submitter
	notifier  ports.Notifier

	onOpenChange  OpenChangeFunc
	listeners     []StateListener
	submitTimeout time.Duration
	logger        *slog.Logger

	inflight sync.WaitGroup
}

// Option configures the Host.
type Option func(*Host)

// WithLogger configures a logger for the Host.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		h.logger = logger
	}
}

// WithNotifier sets the notification sink for submission outcomes.
func WithNotifier(n ports.Notifier) Option {
	return func(h *Host) {
		h.notifier = n
	}
}

// WithOpenChange registers the host container callback.
func WithOpenChange(fn OpenChangeFunc) Option {
	return func(h *Host) {
		h.onOpenChange = fn
	}
}

// WithStateListener registers an observer of persisted transitions.
func WithStateListener(fn StateListener) Option {
	return func(h *Host) {
		h.listeners = append(h.listeners, fn)
	}
}

// WithSubmitTimeout bounds each registration request.
func WithSubmitTimeout(d time.Duration) Option {
	return func(h *Host) {
		h.submitTimeout = d
	}
}

// New creates a Host.
func New(engine *runtime.Engine, sessions *session.Manager, submitter ports.Submitter, opts ...Option) *Host {
	h := &Host{
		engine:        engine,
		sessions:      sessions,
		submitter:     submitter,
		notifier:      ports.NotifierFunc(func(context.Context, domain.Notification) {}),
		submitTimeout: DefaultSubmitTimeout,
		logger:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Engine returns the wizard engine.
func (h *Host) Engine() *runtime.Engine {
	return h.engine
}

// Open mounts a fresh wizard for sessionID. A wizard already open under the
// same id is torn down first; its pending submission, if any, will be discarded.
func (h *Host) Open(ctx context.Context, sessionID string) (*domain.State, error) {
	var prev *domain.State
	state, err := h.update(ctx, sessionID, func(ctx context.Context, current *domain.State) (*domain.State, error) {
		prev = current
		if current != nil {
			return h.engine.Reset(ctx, current), nil
		}
		return h.engine.Start(ctx, sessionID), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open wizard %s: %w", sessionID, err)
	}
	h.logger.Info("wizard opened", "session_id", sessionID, "instance", state.Instance)
	h.publish(sessionID, prev, state)
	h.openChanged(sessionID, true)
	return state, nil
}

// Close tears the wizard down: the session is removed and, once it is gone,
// its previews are revoked. Closing an unknown session is not an error.
func (h *Host) Close(ctx context.Context, sessionID string) error {
	var prev *domain.State
	err := h.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		current, err := h.sessions.Store().Load(ctx, sessionID)
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
		closed := h.engine.Close(ctx, current)
		if err := h.sessions.Store().Delete(ctx, sessionID); err != nil {
			h.engine.Rollback(closed)
			return err
		}
		h.engine.Commit(closed)
		prev = current
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to close wizard %s: %w", sessionID, err)
	}
	if prev != nil {
		h.logger.Info("wizard closed", "session_id", sessionID, "instance", prev.Instance)
		h.publish(sessionID, prev, nil)
	}
	return nil
}

// RequestClose is the wizard asking its container to be closed (cancel,
// dismissal, or the close action of the complete step). The container is
// told through the open-change callback and the wizard is torn down.
func (h *Host) RequestClose(ctx context.Context, sessionID string) error {
	h.openChanged(sessionID, false)
	return h.Close(ctx, sessionID)
}

// State returns the current state of a wizard.
func (h *Host) State(ctx context.Context, sessionID string) (*domain.State, error) {
	return h.sessions.Load(ctx, sessionID)
}

// Registration returns the typed summary of a wizard's answers.
func (h *Host) Registration(ctx context.Context, sessionID string) (*domain.Registration, error) {
	state, err := h.State(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return domain.DecodeRegistration(state.Answers)
}

// Set records a scalar answer.
func (h *Host) Set(ctx context.Context, sessionID, field string, value domain.Value) (*domain.State, error) {
	return h.apply(ctx, sessionID, func(ctx context.Context, s *domain.State) (*domain.State, error) {
		return h.engine.Set(ctx, s, field, value)
	})
}

// Attach binds a file to a file field.
func (h *Host) Attach(ctx context.Context, sessionID, field string, file *domain.Attachment) (*domain.State, error) {
	return h.apply(ctx, sessionID, func(ctx context.Context, s *domain.State) (*domain.State, error) {
		return h.engine.Attach(ctx, s, field, file)
	})
}

// Remove clears a file field.
func (h *Host) Remove(ctx context.Context, sessionID, field string) (*domain.State, error) {
	return h.apply(ctx, sessionID, func(ctx context.Context, s *domain.State) (*domain.State, error) {
		return h.engine.Remove(ctx, s, field)
	})
}

// Continue requests forward navigation.
func (h *Host) Continue(ctx context.Context, sessionID string) (*domain.State, error) {
	return h.apply(ctx, sessionID, h.engine.Continue)
}

// Back requests backward navigation.
func (h *Host) Back(ctx context.Context, sessionID string) (*domain.State, error) {
	return h.apply(ctx, sessionID, h.engine.Back)
}

// Submit starts the submission of a wizard sitting on its last data-entry
// step. It returns as soon as the state is marked submitting (or carries a
// validation error); the request itself runs in the background and its
// outcome is applied and notified when it arrives. Use Wait to block until
// every submission started so far has been resolved.
func (h *Host) Submit(ctx context.Context, sessionID string) (*domain.State, error) {
	var sub *domain.Submission
	state, err := h.apply(ctx, sessionID, func(ctx context.Context, s *domain.State) (*domain.State, error) {
		next, prepared, err := h.engine.PrepareSubmission(ctx, s)
		sub = prepared
		return next, err
	})
	if err != nil || sub == nil {
		return state, err
	}

	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		h.deliver(context.WithoutCancel(ctx), sub)
	}()
	return state, nil
}

// Wait blocks until every in-flight submission has been resolved or ctx is done.
func (h *Host) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// deliver performs the one outbound request of a submission and resolves it.
func (h *Host) deliver(ctx context.Context, sub *domain.Submission) {
	callCtx, cancel := context.WithTimeout(ctx, h.submitTimeout)
	outcome := h.submitter.Submit(callCtx, sub)
	cancel()

	var (
		prev         *domain.State
		notification *domain.Notification
	)
	state, err := h.update(ctx, sub.SessionID, func(ctx context.Context, current *domain.State) (*domain.State, error) {
		prev = current
		next, n, err := h.engine.ResolveSubmission(ctx, current, sub, outcome)
		notification = n
		return next, err
	})
	if errors.Is(err, domain.ErrStaleSubmission) {
		return
	}
	if err != nil {
		h.logger.Error("failed to resolve submission", "session_id", sub.SessionID, "submission_id", sub.ID, "err", err)
		return
	}

	h.publish(sub.SessionID, prev, state)
	if notification != nil {
		h.notifier.Notify(ctx, *notification)
	}
}

// apply runs an engine operation on a live wizard under the session lock.
func (h *Host) apply(ctx context.Context, sessionID string, op func(context.Context, *domain.State) (*domain.State, error)) (*domain.State, error) {
	var prev *domain.State
	state, err := h.update(ctx, sessionID, func(ctx context.Context, current *domain.State) (*domain.State, error) {
		if current == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
		}
		prev = current
		return op(ctx, current)
	})
	if err != nil {
		return nil, err
	}
	h.publish(sessionID, prev, state)
	return state, nil
}

// update runs fn through the session manager and settles the preview effects
// of the resulting state: committed once it is saved, rolled back when fn or
// the save fails.
func (h *Host) update(ctx context.Context, sessionID string, fn func(context.Context, *domain.State) (*domain.State, error)) (*domain.State, error) {
	var staged *domain.State
	state, err := h.sessions.Update(ctx, sessionID, func(ctx context.Context, current *domain.State) (*domain.State, error) {
		next, err := fn(ctx, current)
		staged = next
		return next, err
	})
	if err != nil {
		h.engine.Rollback(staged)
		return nil, err
	}
	h.engine.Commit(state)
	return state, nil
}

func (h *Host) publish(sessionID string, prev, next *domain.State) {
	for _, l := range h.listeners {
		l(sessionID, prev, next)
	}
}

func (h *Host) openChanged(sessionID string, open bool) {
	if h.onOpenChange != nil {
		h.onOpenChange(sessionID, open)
	}
}
