package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/onboard/pkg/domain"
)

// Notification texts of the submission outcome.
const (
	SuccessTitle       = "Registration submitted"
	SuccessDescription = "Your technician registration has been received."
	FailureTitle       = "Registration failed"
	GenericFailure     = "Something went wrong while submitting your registration. Please try again."
)

// userMessager is implemented by submitter errors that carry a message meant
// for the user (e.g. the endpoint's rejection reason).
type userMessager interface {
	UserMessage() string
}

// FailureMessage returns the message surfaced for a failed submission: the
// endpoint-provided one when present, the generic fallback otherwise.
func FailureMessage(err error) string {
	var um userMessager
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return GenericFailure
}

// PrepareSubmission validates the last data-entry step and builds the one
// payload of the wizard: every scalar answer (empty ones included) and every
// present attachment. The returned state is marked submitting. When the step
// does not validate, the state carries the error and no submission is built.
func (e *Engine) PrepareSubmission(ctx context.Context, state *domain.State) (*domain.State, *domain.Submission, error) {
	if err := editable(state); err != nil {
		return nil, nil, err
	}
	if state.CurrentStep != e.graph.LastDataStep() {
		return nil, nil, fmt.Errorf("%w: current step is %s", domain.ErrNotSubmittable, state.CurrentStep)
	}
	if state.Submitting() {
		return nil, nil, domain.ErrSubmissionPending
	}

	next := state.Snapshot()
	if msg, ok := e.validator.Validate(next.CurrentStep, next.Answers); !ok {
		next.Error = msg
		e.emitValidationFailed(ctx, next)
		return next, nil, nil
	}

	payload := next.Answers.Clone()
	sub := &domain.Submission{
		ID:        e.newID(),
		SessionID: next.SessionID,
		Instance:  next.Instance,
		Fields:    payload.Scalars(),
		Files:     payload.Attachments(),
		CreatedAt: e.now(),
	}
	for _, part := range sub.Files {
		part.Attachment.Preview = nil
	}

	next.Error = ""
	next.Status = domain.StatusSubmitting
	next.Pending = &domain.PendingSubmission{ID: sub.ID, StartedAt: sub.CreatedAt}

	e.logger.Info("submission prepared", "session_id", next.SessionID, "submission_id", sub.ID, "files", len(sub.Files))
	e.emitSubmit(ctx, next, sub)
	return next, sub, nil
}

// ResolveSubmission applies the outcome of sub to the live state. Outcomes
// addressed to a closed, reopened or no longer waiting wizard are discarded
// with ErrStaleSubmission. Success moves to complete after releasing every
// preview; failure keeps the step and surfaces the message. In both cases
// the returned notification must be delivered exactly once.
func (e *Engine) ResolveSubmission(ctx context.Context, state *domain.State, sub *domain.Submission, outcome error) (*domain.State, *domain.Notification, error) {
	if state == nil ||
		state.Status == domain.StatusClosed ||
		state.Instance != sub.Instance ||
		state.Pending == nil ||
		state.Pending.ID != sub.ID {
		e.logger.Warn("discarding stale submission outcome", "session_id", sub.SessionID, "submission_id", sub.ID)
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrStaleSubmission, sub.ID)
	}

	next := state.Snapshot()
	next.Pending = nil
	next.Status = domain.StatusActive

	if outcome != nil {
		msg := FailureMessage(outcome)
		next.Error = msg
		e.logger.Warn("submission failed", "session_id", next.SessionID, "submission_id", sub.ID, "err", outcome)
		e.emitSubmitResult(ctx, next, sub, msg, true)
		return next, &domain.Notification{
			SessionID:   next.SessionID,
			Title:       FailureTitle,
			Description: msg,
			Severity:    domain.SeverityError,
		}, nil
	}

	e.effects(next).ReleaseAll(next.Answers)
	next.Error = ""
	e.emitStepLeave(ctx, next)
	next.CurrentStep = e.graph.Terminal()
	next.History = append(next.History, next.CurrentStep)
	next.Status = domain.StatusComplete
	e.emitStepEnter(ctx, next)

	e.logger.Info("submission accepted", "session_id", next.SessionID, "submission_id", sub.ID)
	e.emitSubmitResult(ctx, next, sub, "", false)
	return next, &domain.Notification{
		SessionID:   next.SessionID,
		Title:       SuccessTitle,
		Description: SuccessDescription,
		Severity:    domain.SeveritySuccess,
	}, nil
}
