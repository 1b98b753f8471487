package domain

// StepID identifies one screen of the wizard.
type StepID string

// Registration steps, in default order.
const (
	StepFirstName        StepID = "first_name"
	StepLastName         StepID = "last_name"
	StepEmail            StepID = "email"
	StepPassword         StepID = "password"
	StepPhone            StepID = "phone"
	StepBirthday         StepID = "birthday"
	StepCertification    StepID = "certification"
	StepLicense          StepID = "license"
	StepAddress          StepID = "address"
	StepEmergencyContact StepID = "emergency_contact"
	StepDriversLicense   StepID = "drivers_license"
	StepBanking          StepID = "banking"
	StepSocialInsurance  StepID = "social_insurance"
	StepMedical          StepID = "medical_conditions"

	// StepComplete is the terminal, one-way step reached only by a successful submission.
	StepComplete StepID = "complete"
)

// StepOrder is the fixed ordering of the wizard, terminal step last.
var StepOrder = []StepID{
	StepFirstName,
	StepLastName,
	StepEmail,
	StepPassword,
	StepPhone,
	StepBirthday,
	StepCertification,
	StepLicense,
	StepAddress,
	StepEmergencyContact,
	StepDriversLicense,
	StepBanking,
	StepSocialInsurance,
	StepMedical,
	StepComplete,
}

// StepTitles holds the short human-readable heading of each step.
var StepTitles = map[StepID]string{
	StepFirstName:        "First name",
	StepLastName:         "Last name",
	StepEmail:            "Email",
	StepPassword:         "Password",
	StepPhone:            "Phone number",
	StepBirthday:         "Birthday",
	StepCertification:    "Certification",
	StepLicense:          "License details",
	StepAddress:          "Address",
	StepEmergencyContact: "Emergency contact",
	StepDriversLicense:   "Driver's license",
	StepBanking:          "Banking information",
	StepSocialInsurance:  "Social insurance number",
	StepMedical:          "Medical conditions",
	StepComplete:         "Registration complete",
}

// Title returns the heading of the step, falling back to its identifier.
func (s StepID) Title() string {
	if t, ok := StepTitles[s]; ok {
		return t
	}
	return string(s)
}

// Certification variants recorded by the certification step.
const (
	CertificationIRATA = "irata"
	CertificationSPRAT = "sprat"
	CertificationBoth  = "both"
	CertificationNone  = "none"
)

// IncludesIRATA reports whether the certification variant covers IRATA.
func IncludesIRATA(variant string) bool {
	return variant == CertificationIRATA || variant == CertificationBoth
}

// IncludesSPRAT reports whether the certification variant covers SPRAT.
func IncludesSPRAT(variant string) bool {
	return variant == CertificationSPRAT || variant == CertificationBoth
}
