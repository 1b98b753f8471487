package domain

import "time"

// FieldValue is one scalar part of a submission.
type FieldValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FilePart is one binary part of a submission.
type FilePart struct {
	Field      string      `json:"field"`
	Attachment *Attachment `json:"attachment"`
}

// Submission is the aggregated payload of a whole wizard. It is built once,
// from the complete answer set, and sent in a single request.
type Submission struct {
	ID        string       `json:"id"`
	SessionID string       `json:"session_id"`
	Instance  string       `json:"instance"`
	Fields    []FieldValue `json:"fields"`
	Files     []FilePart   `json:"files,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Field returns the scalar value sent for a field and whether it is part of the payload.
func (s *Submission) Field(name string) (string, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// PendingSubmission marks an outstanding submission on a State.
type PendingSubmission struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
}
