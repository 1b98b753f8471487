package attachment

import (
	"fmt"

	"github.com/aretw0/onboard/pkg/domain"
)

// Tx stages the preview side effects of one transition on an answer set.
// Handles are created immediately so the new state can reference them, but
// handles given up are only revoked on Commit. Rollback revokes the handles
// the transition created and leaves the given up ones live, matching the
// state that is still persisted.
//
// Tx implements domain.Effects. It is not safe for concurrent use.
type Tx struct {
	m        *Manager
	acquired []*domain.PreviewHandle
	released []*domain.PreviewHandle
	done     bool
}

// Attach binds a file to a field, replacing any previous attachment. The old
// preview is given up before a new one is created. visible tells whether the
// field's step is currently on screen; previews are only created for visible
// image attachments.
func (tx *Tx) Attach(answers domain.Answers, field string, file *domain.Attachment, visible bool) error {
	if file == nil {
		return tx.Remove(answers, field)
	}
	if err := fileField(field); err != nil {
		return err
	}

	tx.release(answers.Attachment(field))

	att := file.Clone()
	att.Preview = nil
	if visible {
		tx.acquire(att)
	}
	answers.Set(field, domain.File(att))
	return nil
}

// Remove gives up the field's preview and clears the attachment, leaving an
// empty file value so the same file can be selected again.
func (tx *Tx) Remove(answers domain.Answers, field string) error {
	if err := fileField(field); err != nil {
		return err
	}
	tx.release(answers.Attachment(field))
	answers.Set(field, domain.File(nil))
	return nil
}

// Show lazily creates previews for the image attachments of the given fields.
// It is called when a step comes on screen.
func (tx *Tx) Show(answers domain.Answers, fields []string) {
	for _, name := range fields {
		if att := answers.Attachment(name); att != nil && att.Preview == nil {
			tx.acquire(att)
		}
	}
}

// Hide gives up the previews of the given fields. It is called when a step is left.
func (tx *Tx) Hide(answers domain.Answers, fields []string) {
	for _, name := range fields {
		tx.release(answers.Attachment(name))
	}
}

// ReleaseAll gives up every preview of the answer set. It is called on teardown.
func (tx *Tx) ReleaseAll(answers domain.Answers) {
	for _, part := range answers.Attachments() {
		tx.release(part.Attachment)
	}
}

// Commit revokes the handles given up by the transition.
func (tx *Tx) Commit() {
	if tx.settle() {
		for _, h := range tx.released {
			tx.m.revoke(h)
		}
	}
}

// Rollback revokes the handles created by the transition.
func (tx *Tx) Rollback() {
	if tx.settle() {
		for _, h := range tx.acquired {
			tx.m.revoke(h)
		}
	}
}

// settle reports whether the Tx was still open and closes it.
func (tx *Tx) settle() bool {
	if tx.done {
		return false
	}
	tx.done = true
	return true
}

func (tx *Tx) acquire(att *domain.Attachment) {
	m := tx.m
	if m.previews == nil || att.Display() != domain.DisplayImage {
		return
	}
	handle, err := m.previews.Create(att)
	if err != nil {
		// The attachment stays usable without a preview.
		m.logger.Warn("Failed to create attachment preview", "name", att.Name, "err", err)
		return
	}
	att.Preview = handle
	tx.acquired = append(tx.acquired, handle)
}

func (tx *Tx) release(att *domain.Attachment) {
	if att == nil || att.Preview == nil {
		return
	}
	tx.released = append(tx.released, att.Preview)
	att.Preview = nil
}

func fileField(field string) error {
	f, ok := domain.LookupField(field)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownField, field)
	}
	if f.Kind != domain.KindFile {
		return fmt.Errorf("%w: %s is %s", domain.ErrFieldKind, field, f.Kind)
	}
	return nil
}
