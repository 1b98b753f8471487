package domain

// Severity grades a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is the (title, description, severity) tuple handed to the
// external notification sink. The wizard emits one per submission outcome.
type Notification struct {
	SessionID   string   `json:"session_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}
