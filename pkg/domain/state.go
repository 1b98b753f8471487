package domain

// ExecutionStatus defines the current mode of the wizard.
type ExecutionStatus string

const (
	StatusActive     ExecutionStatus = "active"     // Normal operation
	StatusSubmitting ExecutionStatus = "submitting" // Waiting for the registration endpoint
	StatusComplete   ExecutionStatus = "complete"   // Terminal step reached
	StatusClosed     ExecutionStatus = "closed"     // Torn down by the host
)

// State represents the snapshot of one open wizard.
type State struct {
	// SessionID is the host-facing identifier of the wizard.
	SessionID string `json:"session_id"`

	// Instance is minted on every open. A response addressed to another
	// instance belongs to a wizard that was closed in the meantime.
	Instance string `json:"instance"`

	// CurrentStep is always a vertex of the step graph.
	CurrentStep StepID `json:"current_step"`

	// Status indicates whether the wizard is editable, submitting or done.
	Status ExecutionStatus `json:"status"`

	// Answers is the Field Store.
	Answers Answers `json:"answers"`

	// Error is the single current message: a local validation error or a
	// submission failure. Empty when there is none.
	Error string `json:"error,omitempty"`

	// Pending is set while a submission is outstanding.
	Pending *PendingSubmission `json:"pending,omitempty"`

	// History tracks the steps entered, in order.
	History []StepID `json:"history"`

	// Sealed holds the encrypted form of a whole state. Only envelopes written
	// by an encrypting store carry it; their Answers and History are empty.
	Sealed []byte `json:"sealed,omitempty"`

	// Effects holds the side effects of the transition that produced this
	// state. They are settled by whoever persists it and never stored.
	Effects Effects `json:"-"`
}

// Effects are side effects staged by a transition. Commit runs once the
// resulting state is persisted, Rollback when it could not be.
type Effects interface {
	Commit()
	Rollback()
}

// NewState creates a clean state starting at a specific step.
func NewState(sessionID, instance string, start StepID) *State {
	return &State{
		SessionID:   sessionID,
		Instance:    instance,
		CurrentStep: start,
		Status:      StatusActive,
		Answers:     NewAnswers(),
		History:     []StepID{start},
	}
}

// Snapshot returns a deep copy of the state, safe to mutate independently.
// Staged effects are not carried over.
func (s *State) Snapshot() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.Effects = nil
	next.Answers = s.Answers.Clone()
	if s.Pending != nil {
		p := *s.Pending
		next.Pending = &p
	}
	next.History = append([]StepID(nil), s.History...)
	return &next
}

// Submitting reports whether a submission is outstanding.
func (s *State) Submitting() bool {
	return s.Pending != nil
}

// Terminal reports whether the wizard reached the complete step.
func (s *State) Terminal() bool {
	return s.CurrentStep == StepComplete
}
