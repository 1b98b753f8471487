// Package notify provides in-process notification sinks.
package notify

import (
	"context"
	"log/slog"

	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/ports"
)

// Log writes notifications to a structured logger.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a logging sink.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

// Notify logs n at info level for success and warn level otherwise.
func (l *Log) Notify(ctx context.Context, n domain.Notification) {
	level := slog.LevelInfo
	if n.Severity != domain.SeveritySuccess {
		level = slog.LevelWarn
	}
	l.logger.Log(ctx, level, n.Title,
		"session_id", n.SessionID,
		"description", n.Description,
		"severity", n.Severity)
}

// Fanout delivers every notification to each sink in order.
type Fanout []ports.Notifier

// Notify forwards n to every sink.
func (f Fanout) Notify(ctx context.Context, n domain.Notification) {
	for _, sink := range f {
		if sink != nil {
			sink.Notify(ctx, n)
		}
	}
}

var (
	_ ports.Notifier = (*Log)(nil)
	_ ports.Notifier = Fanout(nil)
)
