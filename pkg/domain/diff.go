package domain

import (
	"reflect"
)

// StateDiff represents the changes between two states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	CurrentStep *StepID          `json:"current_step,omitempty"`
	Status      *ExecutionStatus `json:"status,omitempty"`

	// Error is present when the message changed. An empty string clears it.
	Error *string `json:"error,omitempty"`

	// Submitting is present when a submission started or finished.
	Submitting *bool `json:"submitting,omitempty"`

	// Answers contains only changed, added or deleted fields.
	// For deletions, the key is present with a nil value.
	Answers map[string]any `json:"answers,omitempty"`

	// History contains the steps appended since the old state.
	History *HistoryDelta `json:"history,omitempty"`
}

// HistoryDelta represents changes to the history stack.
type HistoryDelta struct {
	Appended []StepID `json:"appended"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{
		SessionID: newState.SessionID,
	}

	if oldState == nil || oldState.CurrentStep != newState.CurrentStep {
		diff.CurrentStep = &newState.CurrentStep
	}
	if oldState == nil || oldState.Status != newState.Status {
		diff.Status = &newState.Status
	}
	if oldState == nil {
		if newState.Error != "" {
			diff.Error = &newState.Error
		}
		if newState.Submitting() {
			submitting := true
			diff.Submitting = &submitting
		}
	} else {
		if oldState.Error != newState.Error {
			diff.Error = &newState.Error
		}
		if oldState.Submitting() != newState.Submitting() {
			submitting := newState.Submitting()
			diff.Submitting = &submitting
		}
	}

	diff.Answers = diffAnswers(oldState, newState)
	diff.History = diffHistory(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffAnswers(old *State, new *State) map[string]any {
	delta := make(map[string]any)

	if old == nil {
		for k, v := range new.Answers {
			delta[k] = v
		}
		return delta
	}

	for k, newVal := range new.Answers {
		oldVal, exists := old.Answers[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			delta[k] = newVal
		}
	}

	for k := range old.Answers {
		if _, exists := new.Answers[k]; !exists {
			delta[k] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// diffHistory assumes append-only History.
func diffHistory(old *State, new *State) *HistoryDelta {
	if len(new.History) == 0 {
		return nil
	}

	if old == nil {
		return &HistoryDelta{Appended: new.History}
	}

	if len(new.History) > len(old.History) {
		return &HistoryDelta{
			Appended: new.History[len(old.History):],
		}
	}

	return nil
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.CurrentStep == nil &&
		d.Status == nil &&
		d.Error == nil &&
		d.Submitting == nil &&
		len(d.Answers) == 0 &&
		d.History == nil
}
