package redact_test

import (
	"testing"

	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/redact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactor_State(t *testing.T) {
	r, err := redact.New(`^emergency_`)
	require.NoError(t, err)

	state := domain.NewState("s1", "i1", domain.StepBanking)
	state.Answers.Set(domain.FieldFirstName, domain.Text("Ada"))
	state.Answers.Set(domain.FieldPassword, domain.Text("Valid123"))
	state.Answers.Set(domain.FieldBankAccount, domain.Text("1234567"))
	state.Answers.Set(domain.FieldEmergencyContactName, domain.Text("Charles"))
	state.Answers.Set(domain.FieldVoidCheque, domain.File(domain.NewAttachment("cheque.png", "image/png", []byte("png"))))

	out := r.State(state)

	assert.Equal(t, "Ada", out.Answers.Text(domain.FieldFirstName))
	assert.Equal(t, redact.Mask, out.Answers.Text(domain.FieldPassword))
	assert.Equal(t, redact.Mask, out.Answers.Text(domain.FieldBankAccount))
	assert.Equal(t, redact.Mask, out.Answers.Text(domain.FieldEmergencyContactName))
	assert.Equal(t, "", out.Answers.Text(domain.FieldSocialInsurance), "empty values stay empty")

	cheque := out.Answers.Attachment(domain.FieldVoidCheque)
	require.NotNil(t, cheque)
	assert.Nil(t, cheque.Data)
	assert.Equal(t, int64(3), cheque.Size)

	assert.Equal(t, "Valid123", state.Answers.Text(domain.FieldPassword), "input untouched")
	assert.Equal(t, []byte("png"), state.Answers.Attachment(domain.FieldVoidCheque).Data)
}

func TestRedactor_Diff(t *testing.T) {
	r, err := redact.New()
	require.NoError(t, err)

	old := domain.NewState("s1", "i1", domain.StepSocialInsurance)
	next := old.Snapshot()
	next.Answers.Set(domain.FieldSocialInsurance, domain.Text("046454286"))

	d := r.Diff(domain.Diff(old, next))
	require.NotNil(t, d)
	assert.Equal(t, domain.Text(redact.Mask), d.Answers[domain.FieldSocialInsurance])
	assert.Nil(t, r.Diff(nil))
}

func TestRedactor_InvalidPattern(t *testing.T) {
	_, err := redact.New("(")
	assert.Error(t, err)
}
