// Package attachment owns the file-valued fields of a wizard and the preview
// resources derived from them.
//
// Every preview handle the Manager creates is revoked exactly once: when the
// attachment is replaced or removed, when the step showing it is left, or when
// the whole wizard is torn down. Wizard transitions stage these effects in a
// Tx, so nothing is revoked for a state that was never persisted and nothing
// created for it outlives it.
package attachment

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/onboard/internal/logging"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/ports"
)

// Manager applies attachment operations to an answer set.
type Manager struct {
	previews ports.PreviewProvider
	logger   *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager. A nil provider disables previews entirely.
func NewManager(previews ports.PreviewProvider, opts ...Option) *Manager {
	m := &Manager{
		previews: previews,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Begin starts recording the preview side effects of one wizard transition.
func (m *Manager) Begin() *Tx {
	return &Tx{m: m}
}

// Attach binds a file to a field right away. See Tx.Attach.
func (m *Manager) Attach(answers domain.Answers, field string, file *domain.Attachment, visible bool) error {
	tx := m.Begin()
	defer tx.Commit()
	return tx.Attach(answers, field, file, visible)
}

// Remove clears a file field right away. See Tx.Remove.
func (m *Manager) Remove(answers domain.Answers, field string) error {
	tx := m.Begin()
	defer tx.Commit()
	return tx.Remove(answers, field)
}

// Show creates the previews of the given fields right away. See Tx.Show.
func (m *Manager) Show(answers domain.Answers, fields []string) {
	tx := m.Begin()
	tx.Show(answers, fields)
	tx.Commit()
}

// Hide revokes the previews of the given fields right away. See Tx.Hide.
func (m *Manager) Hide(answers domain.Answers, fields []string) {
	tx := m.Begin()
	tx.Hide(answers, fields)
	tx.Commit()
}

// ReleaseAll revokes every preview of the answer set right away. See Tx.ReleaseAll.
func (m *Manager) ReleaseAll(answers domain.Answers) {
	tx := m.Begin()
	tx.ReleaseAll(answers)
	tx.Commit()
}

// Live returns the number of outstanding preview handles.
func (m *Manager) Live() int {
	if m.previews == nil {
		return 0
	}
	return m.previews.Live()
}

func (m *Manager) revoke(handle *domain.PreviewHandle) {
	if m.previews == nil {
		return
	}
	if err := m.previews.Revoke(handle); err != nil {
		level := slog.LevelWarn
		if errors.Is(err, domain.ErrPreviewNotFound) {
			// Double revocation or a handle minted by another process.
			level = slog.LevelError
		}
		m.logger.Log(context.Background(), level, "Failed to revoke attachment preview", "preview_id", handle.ID, "err", err)
	}
}
