package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnknownField is returned when an answer targets a field outside the catalogue.
var ErrUnknownField = errors.New("unknown field")

// ErrFieldKind is returned when a value's kind does not match the catalogue entry.
var ErrFieldKind = errors.New("value kind does not match field")

// ErrInvalidOption is returned when a choice value is not one of the field's options.
var ErrInvalidOption = errors.New("invalid option")

// ErrTerminal is returned when an operation is attempted on a completed or closed wizard.
var ErrTerminal = errors.New("wizard is not editable")

// ErrSubmitRequired is returned when Continue is requested on the last data-entry step.
var ErrSubmitRequired = errors.New("last step must be submitted")

// ErrNotSubmittable is returned when a submission is requested away from the last data-entry step.
var ErrNotSubmittable = errors.New("submission is only allowed from the last step")

// ErrSubmissionPending is returned while an earlier submission is outstanding.
var ErrSubmissionPending = errors.New("submission already in progress")

// ErrStaleSubmission is returned when a submission outcome no longer matches the live state.
var ErrStaleSubmission = errors.New("stale submission outcome")

// ErrPreviewNotFound is returned when a preview handle is unknown or already revoked.
var ErrPreviewNotFound = errors.New("preview not found")
