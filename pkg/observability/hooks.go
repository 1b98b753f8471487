package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/onboard/pkg/domain"
)

// LoggingHooks logs every lifecycle event at debug level, submission
// outcomes at info (or warn on failure).
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step_enter", "session_id", e.SessionID, "step", e.StepID)
		},
		OnStepLeave: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step_leave", "session_id", e.SessionID, "step", e.StepID)
		},
		OnValidationFailed: func(ctx context.Context, e *domain.ValidationEvent) {
			logger.DebugContext(ctx, "validation_failed", "session_id", e.SessionID, "step", e.StepID, "reason", e.Message)
		},
		OnSubmit: func(ctx context.Context, e *domain.SubmitEvent) {
			logger.InfoContext(ctx, "submit", "session_id", e.SessionID, "submission_id", e.SubmissionID, "files", e.Files)
		},
		OnSubmitResult: func(ctx context.Context, e *domain.SubmitEvent) {
			level := slog.LevelInfo
			if e.IsError {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "submit_result",
				"session_id", e.SessionID,
				"submission_id", e.SubmissionID,
				"duration", e.Duration,
				"is_error", e.IsError,
				"message", e.Message)
		},
	}
}

// Combine merges hooks so that each event reaches every set, in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		out.OnStepEnter = chain(out.OnStepEnter, h.OnStepEnter)
		out.OnStepLeave = chain(out.OnStepLeave, h.OnStepLeave)
		out.OnValidationFailed = chain(out.OnValidationFailed, h.OnValidationFailed)
		out.OnSubmit = chain(out.OnSubmit, h.OnSubmit)
		out.OnSubmitResult = chain(out.OnSubmitResult, h.OnSubmitResult)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
