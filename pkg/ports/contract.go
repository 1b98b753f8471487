package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/onboard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID, "instance-1", domain.StepFirstName)
		state.Answers.Set(domain.FieldFirstName, domain.Text("Ada"))
		state.Answers.Set(domain.FieldCertification, domain.Choice(domain.CertificationBoth))
		state.Answers.Set(domain.FieldVoidCheque, domain.File(domain.NewAttachment("cheque.pdf", "application/pdf", []byte("%PDF-1.4"))))
		state.Error = "Last name is required"

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state.CurrentStep, loaded.CurrentStep)
		assert.Equal(t, state.Instance, loaded.Instance)
		assert.Equal(t, state.Error, loaded.Error)
		assert.Equal(t, "Ada", loaded.Answers.Text(domain.FieldFirstName))
		assert.Equal(t, domain.CertificationBoth, loaded.Answers.Text(domain.FieldCertification))

		cheque := loaded.Answers.Attachment(domain.FieldVoidCheque)
		require.NotNil(t, cheque, "attachments must survive persistence")
		assert.Equal(t, []byte("%PDF-1.4"), cheque.Data)
		assert.Len(t, loaded.Answers, len(domain.Catalogue), "every catalogue field must be present")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(sessionID, "instance-2", domain.StepFirstName))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1, "a", domain.StepFirstName))
		_ = store.Save(ctx, id2, domain.NewState(id2, "b", domain.StepFirstName))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
