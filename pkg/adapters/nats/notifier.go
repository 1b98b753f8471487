// Package nats publishes submission outcome notifications on a NATS subject.
package nats

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/aretw0/onboard/internal/logging"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/ports"
	"github.com/nats-io/nats.go"
)

// DefaultSubject is the subject prefix notifications are published under.
// The severity is appended: onboard.notifications.success, onboard.notifications.error.
const DefaultSubject = "onboard.notifications"

// SessionHeader carries the session id on every published message.
const SessionHeader = "Onboard-Session"

// Notifier publishes notifications as JSON messages.
type Notifier struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

// Option configures the Notifier.
type Option func(*Notifier)

// WithSubject overrides the subject prefix.
func WithSubject(subject string) Option {
	return func(n *Notifier) {
		n.subject = subject
	}
}

// WithLogger configures a logger for the Notifier.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		n.logger = logger
	}
}

// New creates a Notifier on an established connection. The caller owns conn.
func New(conn *nats.Conn, opts ...Option) *Notifier {
	n := &Notifier{
		conn:    conn,
		subject: DefaultSubject,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Subject returns the subject a notification of the given severity goes to.
func (n *Notifier) Subject(severity domain.Severity) string {
	return n.subject + "." + string(severity)
}

// Notify publishes n. Delivery failures are logged, never returned.
func (n *Notifier) Notify(ctx context.Context, note domain.Notification) {
	data, err := json.Marshal(note)
	if err != nil {
		n.logger.Error("failed to marshal notification", "session_id", note.SessionID, "err", err)
		return
	}

	msg := nats.NewMsg(n.Subject(note.Severity))
	msg.Data = data
	msg.Header.Set(SessionHeader, note.SessionID)

	if err := n.conn.PublishMsg(msg); err != nil {
		n.logger.Error("failed to publish notification", "session_id", note.SessionID, "subject", msg.Subject, "err", err)
		return
	}
	n.logger.Debug("notification published", "session_id", note.SessionID, "subject", msg.Subject)
}

var _ ports.Notifier = (*Notifier)(nil)
