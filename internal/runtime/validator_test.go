package runtime_test

import (
	"testing"

	"github.com/aretw0/onboard/internal/runtime"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestValidator_Password(t *testing.T) {
	v := runtime.NewValidator()

	tests := []struct {
		name         string
		password     string
		confirmation string
		want         string
	}{
		{"too short", "short1A", "short1A", runtime.MsgPasswordLength},
		{"no uppercase", "alllowercase1", "alllowercase1", runtime.MsgPasswordUpper},
		{"no lowercase", "ALLUPPERCASE1", "ALLUPPERCASE1", runtime.MsgPasswordLower},
		{"no digit", "NoDigitsHere", "NoDigitsHere", runtime.MsgPasswordDigit},
		{"mismatch", "Valid123", "Valid124", runtime.MsgPasswordMismatch},
		{"empty", "", "", runtime.MsgPasswordLength},
		{"valid", "Valid123", "Valid123", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := domain.NewAnswers()
			a.Set(domain.FieldPassword, domain.Text(tt.password))
			a.Set(domain.FieldPasswordConfirmation, domain.Text(tt.confirmation))

			msg, ok := v.Validate(domain.StepPassword, a)
			assert.Equal(t, tt.want, msg)
			assert.Equal(t, tt.want == "", ok)
		})
	}
}

func TestValidator_Email(t *testing.T) {
	v := runtime.NewValidator()

	tests := []struct {
		input string
		want  string
	}{
		{"", "Email is required"},
		{"   ", "Email is required"},
		{"not-an-email", runtime.MsgInvalidEmail},
		{"user@example", runtime.MsgInvalidEmail},
		{"user @example.com", runtime.MsgInvalidEmail},
		{"user@example.com", ""},
		{" user@example.com ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			a := domain.NewAnswers()
			a.Set(domain.FieldEmail, domain.Text(tt.input))
			msg, _ := v.Validate(domain.StepEmail, a)
			assert.Equal(t, tt.want, msg)
		})
	}
}

func TestValidator_RequiredText(t *testing.T) {
	v := runtime.NewValidator()
	a := domain.NewAnswers()

	msg, ok := v.Validate(domain.StepFirstName, a)
	assert.False(t, ok)
	assert.Equal(t, "First name is required", msg)

	a.Set(domain.FieldFirstName, domain.Text("  "))
	_, ok = v.Validate(domain.StepFirstName, a)
	assert.False(t, ok, "whitespace is empty")

	a.Set(domain.FieldStreetAddress, domain.Text("1 Rope St"))
	a.Set(domain.FieldCity, domain.Text("Halifax"))
	msg, _ = v.Validate(domain.StepAddress, a)
	assert.Equal(t, "Province / state is required", msg, "first missing field wins")
}

func TestValidator_Certification(t *testing.T) {
	v := runtime.NewValidator()
	a := domain.NewAnswers()

	msg, ok := v.Validate(domain.StepCertification, a)
	assert.False(t, ok)
	assert.Equal(t, runtime.MsgSelectCertification, msg)

	a.Set(domain.FieldCertification, domain.Choice(domain.CertificationNone))
	_, ok = v.Validate(domain.StepCertification, a)
	assert.True(t, ok)
}

func TestValidator_License(t *testing.T) {
	v := runtime.NewValidator()

	t.Run("irata requires level and numeric number", func(t *testing.T) {
		a := answersWith(domain.CertificationIRATA)
		msg, _ := v.Validate(domain.StepLicense, a)
		assert.Equal(t, "IRATA level is required", msg)

		a.Set(domain.FieldIRATALevel, domain.Choice("2"))
		msg, _ = v.Validate(domain.StepLicense, a)
		assert.Equal(t, "IRATA license number is required", msg)

		a.Set(domain.FieldIRATALicenseNumber, domain.Text("A-12"))
		msg, _ = v.Validate(domain.StepLicense, a)
		assert.Equal(t, "IRATA license number must be a number", msg)

		a.Set(domain.FieldIRATALicenseNumber, domain.Text("12345"))
		_, ok := v.Validate(domain.StepLicense, a)
		assert.True(t, ok, "sprat details are not required for irata")
	})

	t.Run("both requires both", func(t *testing.T) {
		a := answersWith(domain.CertificationBoth)
		a.Set(domain.FieldIRATALevel, domain.Choice("1"))
		a.Set(domain.FieldIRATALicenseNumber, domain.Text("1"))
		msg, _ := v.Validate(domain.StepLicense, a)
		assert.Equal(t, "SPRAT level is required", msg)
	})

	t.Run("none requires nothing", func(t *testing.T) {
		_, ok := v.Validate(domain.StepLicense, answersWith(domain.CertificationNone))
		assert.True(t, ok)
	})
}

func TestValidator_OptionalStepsAlwaysPass(t *testing.T) {
	v := runtime.NewValidator()
	a := domain.NewAnswers()

	for _, step := range []domain.StepID{
		domain.StepBirthday,
		domain.StepDriversLicense,
		domain.StepBanking,
		domain.StepSocialInsurance,
		domain.StepMedical,
	} {
		_, ok := v.Validate(step, a)
		assert.True(t, ok, "step %s", step)
	}
}
