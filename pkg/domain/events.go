package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter        EventType = "step_enter"
	EventStepLeave        EventType = "step_leave"
	EventValidationFailed EventType = "validation_failed"
	EventSubmit           EventType = "submit"
	EventSubmitResult     EventType = "submit_result"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// StepEvent represents entry into or exit from a step.
type StepEvent struct {
	EventBase
	StepID StepID `json:"step_id"`
}

// ValidationEvent represents a refused forward transition.
type ValidationEvent struct {
	EventBase
	StepID  StepID `json:"step_id"`
	Message string `json:"message"`
}

// SubmitEvent represents the start or the outcome of a submission.
type SubmitEvent struct {
	EventBase
	SubmissionID string        `json:"submission_id"`
	Files        int           `json:"files,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	IsError      bool          `json:"is_error,omitempty"`
	Message      string        `json:"message,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStepEnter        func(context.Context, *StepEvent)
	OnStepLeave        func(context.Context, *StepEvent)
	OnValidationFailed func(context.Context, *ValidationEvent)
	OnSubmit           func(context.Context, *SubmitEvent)
	OnSubmitResult     func(context.Context, *SubmitEvent)
}
