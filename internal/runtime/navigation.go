package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/onboard/pkg/domain"
)

// editable refuses operations on wizards that reached complete or were closed.
func editable(state *domain.State) error {
	if state.Terminal() || state.Status == domain.StatusComplete || state.Status == domain.StatusClosed {
		return fmt.Errorf("%w: status=%s step=%s", domain.ErrTerminal, state.Status, state.CurrentStep)
	}
	return nil
}

// Set records a scalar answer. The value kind must match the catalogue, choice
// values must be one of the field's options and dates must be YYYY-MM-DD.
// Text answers are sanitized. Any accepted edit clears the current error.
func (e *Engine) Set(ctx context.Context, state *domain.State, field string, value domain.Value) (*domain.State, error) {
	if err := editable(state); err != nil {
		return nil, err
	}

	f, ok := domain.LookupField(field)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownField, field)
	}
	if f.Kind == domain.KindFile || value.Kind != f.Kind {
		return nil, fmt.Errorf("%w: %s expects %s, got %s", domain.ErrFieldKind, field, f.Kind, value.Kind)
	}

	switch f.Kind {
	case domain.KindChoice:
		if !f.Allows(value.Text) {
			return nil, fmt.Errorf("%w: %q for %s", domain.ErrInvalidOption, value.Text, field)
		}
	case domain.KindDate:
		if value.Text != "" {
			if _, err := time.Parse(domain.DateLayout, value.Text); err != nil {
				return nil, fmt.Errorf("%w: %s expects a YYYY-MM-DD date", domain.ErrFieldKind, field)
			}
		}
	case domain.KindText:
		clean, err := SanitizeInput(value.Text, e.maxInputSize)
		if err != nil {
			return nil, fmt.Errorf("failed to sanitize %s: %w", field, err)
		}
		value.Text = clean
	}

	next := state.Snapshot()
	next.Answers.Set(field, domain.Value{Kind: f.Kind, Text: value.Text})
	next.Error = ""
	return next, nil
}

// Attach binds a file to a file field, replacing any previous one. The old
// preview is revoked when the returned state is committed.
func (e *Engine) Attach(ctx context.Context, state *domain.State, field string, file *domain.Attachment) (*domain.State, error) {
	if err := editable(state); err != nil {
		return nil, err
	}

	next := state.Snapshot()
	visible := false
	if f, ok := domain.LookupField(field); ok {
		visible = f.Step == next.CurrentStep
	}
	if err := e.effects(next).Attach(next.Answers, field, file, visible); err != nil {
		return nil, err
	}
	next.Error = ""
	return next, nil
}

// Remove clears a file field. Its preview is revoked on commit.
func (e *Engine) Remove(ctx context.Context, state *domain.State, field string) (*domain.State, error) {
	if err := editable(state); err != nil {
		return nil, err
	}

	next := state.Snapshot()
	if err := e.effects(next).Remove(next.Answers, field); err != nil {
		return nil, err
	}
	next.Error = ""
	return next, nil
}

// Continue validates the current step and, when it passes, moves to its
// successor. A failing step keeps the wizard in place with Error set.
// The last data-entry step is left only by submission.
func (e *Engine) Continue(ctx context.Context, state *domain.State) (*domain.State, error) {
	if err := editable(state); err != nil {
		return nil, err
	}
	if state.CurrentStep == e.graph.LastDataStep() {
		return nil, domain.ErrSubmitRequired
	}

	next := state.Snapshot()
	if msg, ok := e.validator.Validate(next.CurrentStep, next.Answers); !ok {
		next.Error = msg
		e.logger.Debug("step validation failed", "session_id", next.SessionID, "step", next.CurrentStep, "reason", msg)
		e.emitValidationFailed(ctx, next)
		return next, nil
	}

	next.Error = ""
	e.moveTo(ctx, next, e.graph.Next(next.CurrentStep, next.Answers))
	return next, nil
}

// Back moves to the predecessor of the current step without validating and
// without touching answers. It is a no-op on the first step.
func (e *Engine) Back(ctx context.Context, state *domain.State) (*domain.State, error) {
	if err := editable(state); err != nil {
		return nil, err
	}

	next := state.Snapshot()
	next.Error = ""
	e.moveTo(ctx, next, e.graph.Prev(next.CurrentStep, next.Answers))
	return next, nil
}

// moveTo performs step teardown of the current step and enters target.
func (e *Engine) moveTo(ctx context.Context, state *domain.State, target domain.StepID) {
	if target == state.CurrentStep {
		return
	}
	e.emitStepLeave(ctx, state)
	e.effects(state).Hide(state.Answers, domain.FieldNamesOf(state.CurrentStep))

	state.CurrentStep = target
	state.History = append(state.History, target)

	e.effects(state).Show(state.Answers, domain.FieldNamesOf(target))
	e.emitStepEnter(ctx, state)
}
