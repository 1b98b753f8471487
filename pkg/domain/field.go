package domain

// Field names of the registration catalogue.
const (
	FieldFirstName             = "first_name"
	FieldLastName              = "last_name"
	FieldEmail                 = "email"
	FieldPassword              = "password"
	FieldPasswordConfirmation  = "password_confirmation"
	FieldPhone                 = "phone"
	FieldBirthday              = "birthday"
	FieldCertification         = "certification"
	FieldIRATALevel            = "irata_level"
	FieldIRATALicenseNumber    = "irata_license_number"
	FieldSPRATLevel            = "sprat_level"
	FieldSPRATLicenseNumber    = "sprat_license_number"
	FieldCertificationExpiry   = "certification_expiry"
	FieldCertificationCard     = "certification_card"
	FieldStreetAddress         = "street_address"
	FieldCity                  = "city"
	FieldRegion                = "region"
	FieldCountry               = "country"
	FieldPostalCode            = "postal_code"
	FieldEmergencyContactName  = "emergency_contact_name"
	FieldEmergencyContactPhone = "emergency_contact_phone"
	FieldDriversLicenseNumber  = "drivers_license_number"
	FieldDriversLicense        = "drivers_license"
	FieldDriversAbstract       = "drivers_abstract"
	FieldBankInstitution       = "bank_institution_number"
	FieldBankTransit           = "bank_transit_number"
	FieldBankAccount           = "bank_account_number"
	FieldVoidCheque            = "void_cheque"
	FieldSocialInsurance       = "social_insurance_number"
	FieldMedicalConditions     = "medical_conditions"
)

// Field describes one answer of the catalogue.
type Field struct {
	Name    string    `json:"name" yaml:"name"`
	Label   string    `json:"label" yaml:"label"`
	Kind    ValueKind `json:"kind" yaml:"kind"`
	Step    StepID    `json:"step" yaml:"step"`
	Options []string  `json:"options,omitempty" yaml:"options,omitempty"`

	// Sensitive fields are masked whenever a state leaves the process
	// (API responses, diffs, logs).
	Sensitive bool `json:"sensitive,omitempty" yaml:"sensitive,omitempty"`
}

// Allows reports whether a choice option is valid for the field.
// Non-choice fields and the empty option are always allowed.
func (f Field) Allows(option string) bool {
	if f.Kind != KindChoice || option == "" {
		return true
	}
	for _, o := range f.Options {
		if o == option {
			return true
		}
	}
	return false
}

var levels = []string{"1", "2", "3"}

// Catalogue lists every field of the registration wizard in submission order.
var Catalogue = []Field{
	{Name: FieldFirstName, Label: "First name", Kind: KindText, Step: StepFirstName},
	{Name: FieldLastName, Label: "Last name", Kind: KindText, Step: StepLastName},
	{Name: FieldEmail, Label: "Email", Kind: KindText, Step: StepEmail},
	{Name: FieldPassword, Label: "Password", Kind: KindText, Step: StepPassword, Sensitive: true},
	{Name: FieldPasswordConfirmation, Label: "Password confirmation", Kind: KindText, Step: StepPassword, Sensitive: true},
	{Name: FieldPhone, Label: "Phone number", Kind: KindText, Step: StepPhone},
	{Name: FieldBirthday, Label: "Birthday", Kind: KindDate, Step: StepBirthday},
	{
		Name:    FieldCertification,
		Label:   "Certification",
		Kind:    KindChoice,
		Step:    StepCertification,
		Options: []string{CertificationIRATA, CertificationSPRAT, CertificationBoth, CertificationNone},
	},
	{Name: FieldIRATALevel, Label: "IRATA level", Kind: KindChoice, Step: StepLicense, Options: levels},
	{Name: FieldIRATALicenseNumber, Label: "IRATA license number", Kind: KindText, Step: StepLicense},
	{Name: FieldSPRATLevel, Label: "SPRAT level", Kind: KindChoice, Step: StepLicense, Options: levels},
	{Name: FieldSPRATLicenseNumber, Label: "SPRAT license number", Kind: KindText, Step: StepLicense},
	{Name: FieldCertificationExpiry, Label: "Certification expiry", Kind: KindDate, Step: StepLicense},
	{Name: FieldCertificationCard, Label: "Certification card", Kind: KindFile, Step: StepLicense},
	{Name: FieldStreetAddress, Label: "Street address", Kind: KindText, Step: StepAddress},
	{Name: FieldCity, Label: "City", Kind: KindText, Step: StepAddress},
	{Name: FieldRegion, Label: "Province / state", Kind: KindText, Step: StepAddress},
	{Name: FieldCountry, Label: "Country", Kind: KindText, Step: StepAddress},
	{Name: FieldPostalCode, Label: "Postal code", Kind: KindText, Step: StepAddress},
	{Name: FieldEmergencyContactName, Label: "Emergency contact name", Kind: KindText, Step: StepEmergencyContact},
	{Name: FieldEmergencyContactPhone, Label: "Emergency contact phone", Kind: KindText, Step: StepEmergencyContact},
	{Name: FieldDriversLicenseNumber, Label: "Driver's license number", Kind: KindText, Step: StepDriversLicense, Sensitive: true},
	{Name: FieldDriversLicense, Label: "Driver's license", Kind: KindFile, Step: StepDriversLicense},
	{Name: FieldDriversAbstract, Label: "Driver's abstract", Kind: KindFile, Step: StepDriversLicense},
	{Name: FieldBankInstitution, Label: "Institution number", Kind: KindText, Step: StepBanking, Sensitive: true},
	{Name: FieldBankTransit, Label: "Transit number", Kind: KindText, Step: StepBanking, Sensitive: true},
	{Name: FieldBankAccount, Label: "Account number", Kind: KindText, Step: StepBanking, Sensitive: true},
	{Name: FieldVoidCheque, Label: "Void cheque", Kind: KindFile, Step: StepBanking},
	{Name: FieldSocialInsurance, Label: "Social insurance number", Kind: KindText, Step: StepSocialInsurance, Sensitive: true},
	{Name: FieldMedicalConditions, Label: "Medical conditions", Kind: KindText, Step: StepMedical},
}

var catalogueIndex = func() map[string]Field {
	idx := make(map[string]Field, len(Catalogue))
	for _, f := range Catalogue {
		idx[f.Name] = f
	}
	return idx
}()

// LookupField returns the catalogue entry for a field name.
func LookupField(name string) (Field, bool) {
	f, ok := catalogueIndex[name]
	return f, ok
}

// FieldsOf returns the catalogue entries owned by a step, in catalogue order.
func FieldsOf(step StepID) []Field {
	var out []Field
	for _, f := range Catalogue {
		if f.Step == step {
			out = append(out, f)
		}
	}
	return out
}

// FieldNamesOf returns the names of the fields owned by a step.
func FieldNamesOf(step StepID) []string {
	fields := FieldsOf(step)
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}
