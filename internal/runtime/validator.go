package runtime

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/aretw0/onboard/pkg/domain"
)

// StepValidator inspects the answers of one step and returns the first
// problem found, or "" when the step may be left forwards.
type StepValidator func(domain.Answers) string

// Validator maps steps to their validators. Steps without an entry are
// always valid.
type Validator struct {
	rules map[domain.StepID]StepValidator
}

// Validation messages shared with tests and front ends.
const (
	MsgSelectCertification = "Please select your certification"
	MsgInvalidEmail        = "Please enter a valid email address"
	MsgPasswordLength      = "Password must be at least 8 characters"
	MsgPasswordUpper       = "Password must contain at least one uppercase letter"
	MsgPasswordLower       = "Password must contain at least one lowercase letter"
	MsgPasswordDigit       = "Password must contain at least one number"
	MsgPasswordMismatch    = "Passwords do not match"
)

const minPasswordLength = 8

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	numericPattern = regexp.MustCompile(`^[0-9]+$`)
)

// NewValidator returns the validation table of the registration wizard.
func NewValidator() *Validator {
	return &Validator{
		rules: map[domain.StepID]StepValidator{
			domain.StepFirstName:        required(domain.FieldFirstName),
			domain.StepLastName:         required(domain.FieldLastName),
			domain.StepEmail:            validateEmail,
			domain.StepPassword:         validatePassword,
			domain.StepPhone:            required(domain.FieldPhone),
			domain.StepCertification:    validateCertification,
			domain.StepLicense:          validateLicense,
			domain.StepAddress:          required(domain.FieldStreetAddress, domain.FieldCity, domain.FieldRegion, domain.FieldCountry, domain.FieldPostalCode),
			domain.StepEmergencyContact: required(domain.FieldEmergencyContactName, domain.FieldEmergencyContactPhone),
		},
	}
}

// Validate runs the validator of step. ok is false when msg holds an error.
func (v *Validator) Validate(step domain.StepID, answers domain.Answers) (msg string, ok bool) {
	rule, found := v.rules[step]
	if !found {
		return "", true
	}
	msg = rule(answers)
	return msg, msg == ""
}

// RequiredMessage formats the message for an empty required field.
func RequiredMessage(field string) string {
	label := field
	if f, ok := domain.LookupField(field); ok {
		label = f.Label
	}
	return label + " is required"
}

func required(fields ...string) StepValidator {
	return func(a domain.Answers) string {
		for _, f := range fields {
			if strings.TrimSpace(a.Text(f)) == "" {
				return RequiredMessage(f)
			}
		}
		return ""
	}
}

func validateEmail(a domain.Answers) string {
	email := strings.TrimSpace(a.Text(domain.FieldEmail))
	if email == "" {
		return RequiredMessage(domain.FieldEmail)
	}
	if !emailPattern.MatchString(email) {
		return MsgInvalidEmail
	}
	return ""
}

func validatePassword(a domain.Answers) string {
	pw := a.Text(domain.FieldPassword)

	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	switch {
	case len([]rune(pw)) < minPasswordLength:
		return MsgPasswordLength
	case !upper:
		return MsgPasswordUpper
	case !lower:
		return MsgPasswordLower
	case !digit:
		return MsgPasswordDigit
	case a.Text(domain.FieldPasswordConfirmation) != pw:
		return MsgPasswordMismatch
	}
	return ""
}

func validateCertification(a domain.Answers) string {
	f, _ := domain.LookupField(domain.FieldCertification)
	choice := a.Text(domain.FieldCertification)
	if choice == "" || !f.Allows(choice) {
		return MsgSelectCertification
	}
	return ""
}

func validateLicense(a domain.Answers) string {
	variant := a.Text(domain.FieldCertification)
	if domain.IncludesIRATA(variant) {
		if msg := licenseDetails(a, domain.FieldIRATALevel, domain.FieldIRATALicenseNumber); msg != "" {
			return msg
		}
	}
	if domain.IncludesSPRAT(variant) {
		if msg := licenseDetails(a, domain.FieldSPRATLevel, domain.FieldSPRATLicenseNumber); msg != "" {
			return msg
		}
	}
	return ""
}

func licenseDetails(a domain.Answers, levelField, numberField string) string {
	if strings.TrimSpace(a.Text(levelField)) == "" {
		return RequiredMessage(levelField)
	}
	number := strings.TrimSpace(a.Text(numberField))
	if number == "" {
		return RequiredMessage(numberField)
	}
	if !numericPattern.MatchString(number) {
		f, _ := domain.LookupField(numberField)
		return f.Label + " must be a number"
	}
	return ""
}
