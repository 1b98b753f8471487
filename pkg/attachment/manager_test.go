package attachment_test

import (
	"testing"

	"github.com/aretw0/onboard/pkg/adapters/preview"
	"github.com/aretw0/onboard/pkg/attachment"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func png(name string) *domain.Attachment {
	return domain.NewAttachment(name, "image/png", []byte{0x89, 'P', 'N', 'G'})
}

func TestManager_ReplaceRevokesPrevious(t *testing.T) {
	reg := preview.NewRegistry("/previews")
	m := attachment.NewManager(reg)
	answers := domain.NewAnswers()

	require.NoError(t, m.Attach(answers, domain.FieldCertificationCard, png("a.png"), true))
	first := answers.Attachment(domain.FieldCertificationCard).Preview
	require.NotNil(t, first)
	assert.Equal(t, 1, m.Live())

	require.NoError(t, m.Attach(answers, domain.FieldCertificationCard, png("b.png"), true))
	second := answers.Attachment(domain.FieldCertificationCard).Preview
	require.NotNil(t, second)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, m.Live(), "exactly one handle must be live after a replace")

	require.NoError(t, m.Remove(answers, domain.FieldCertificationCard))
	assert.Equal(t, 0, m.Live())
	assert.Nil(t, answers.Attachment(domain.FieldCertificationCard))
	assert.True(t, answers.Get(domain.FieldCertificationCard).IsZero())
}

func TestManager_DocumentsGetIconOnly(t *testing.T) {
	reg := preview.NewRegistry("/previews")
	m := attachment.NewManager(reg)
	answers := domain.NewAnswers()

	doc := domain.NewAttachment("abstract.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, m.Attach(answers, domain.FieldDriversAbstract, doc, true))

	got := answers.Attachment(domain.FieldDriversAbstract)
	require.NotNil(t, got)
	assert.Nil(t, got.Preview)
	assert.Equal(t, domain.DocumentIcon, got.Icon())
	assert.Equal(t, 0, m.Live())
}

func TestManager_ShowAndHide(t *testing.T) {
	reg := preview.NewRegistry("/previews")
	m := attachment.NewManager(reg)
	answers := domain.NewAnswers()
	fields := domain.FieldNamesOf(domain.StepBanking)

	require.NoError(t, m.Attach(answers, domain.FieldVoidCheque, png("cheque.png"), false))
	assert.Nil(t, answers.Attachment(domain.FieldVoidCheque).Preview, "hidden steps get no preview")
	assert.Equal(t, 0, m.Live())

	m.Show(answers, fields)
	assert.NotNil(t, answers.Attachment(domain.FieldVoidCheque).Preview)
	assert.Equal(t, 1, m.Live())

	m.Show(answers, fields)
	assert.Equal(t, 1, m.Live(), "showing twice must not leak a second handle")

	m.Hide(answers, fields)
	assert.Nil(t, answers.Attachment(domain.FieldVoidCheque).Preview)
	assert.Equal(t, 0, m.Live())
}

func TestManager_ReleaseAll(t *testing.T) {
	reg := preview.NewRegistry("/previews")
	m := attachment.NewManager(reg)
	answers := domain.NewAnswers()

	require.NoError(t, m.Attach(answers, domain.FieldDriversLicense, png("front.png"), true))
	require.NoError(t, m.Attach(answers, domain.FieldVoidCheque, png("cheque.png"), true))
	assert.Equal(t, 2, m.Live())

	m.ReleaseAll(answers)
	assert.Equal(t, 0, m.Live())
	assert.NotNil(t, answers.Attachment(domain.FieldVoidCheque), "release keeps the attachment itself")
}

func TestManager_RejectsNonFileFields(t *testing.T) {
	m := attachment.NewManager(nil)
	answers := domain.NewAnswers()

	err := m.Attach(answers, domain.FieldEmail, png("x.png"), true)
	assert.ErrorIs(t, err, domain.ErrFieldKind)

	err = m.Attach(answers, "nope", png("x.png"), true)
	assert.ErrorIs(t, err, domain.ErrUnknownField)
}

func TestManager_DoesNotAliasCallerFile(t *testing.T) {
	reg := preview.NewRegistry("/previews")
	m := attachment.NewManager(reg)
	answers := domain.NewAnswers()

	file := png("card.png")
	require.NoError(t, m.Attach(answers, domain.FieldCertificationCard, file, true))
	assert.Nil(t, file.Preview)
}

func TestTx_ReplaceIsSettledOnCommit(t *testing.T) {
	reg := preview.NewRegistry("/previews")
	m := attachment.NewManager(reg)
	answers := domain.NewAnswers()
	require.NoError(t, m.Attach(answers, domain.FieldCertificationCard, png("a.png"), true))

	tx := m.Begin()
	require.NoError(t, tx.Attach(answers, domain.FieldCertificationCard, png("b.png"), true))
	assert.Equal(t, 2, m.Live(), "the replaced handle stays live until commit")

	tx.Commit()
	assert.Equal(t, 1, m.Live())

	tx.Rollback()
	assert.Equal(t, 1, m.Live(), "a settled transaction ignores further settling")
}

func TestTx_RollbackRevokesOnlyNewHandles(t *testing.T) {
	reg := preview.NewRegistry("/previews")
	m := attachment.NewManager(reg)
	answers := domain.NewAnswers()
	require.NoError(t, m.Attach(answers, domain.FieldDriversLicense, png("front.png"), true))
	kept := answers.Attachment(domain.FieldDriversLicense).Preview

	staged := answers.Clone()
	tx := m.Begin()
	tx.Hide(staged, domain.FieldNamesOf(domain.StepDriversLicense))
	require.NoError(t, tx.Attach(staged, domain.FieldVoidCheque, png("cheque.png"), true))
	assert.Equal(t, 2, m.Live())

	tx.Rollback()
	assert.Equal(t, 1, m.Live())
	assert.NoError(t, reg.Revoke(kept), "the handle of the persisted answers survives a rollback")
}
