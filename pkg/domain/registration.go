package domain

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Registration is the typed view of a complete answer set.
type Registration struct {
	FirstName     string    `mapstructure:"first_name" json:"first_name"`
	LastName      string    `mapstructure:"last_name" json:"last_name"`
	Email         string    `mapstructure:"email" json:"email"`
	Phone         string    `mapstructure:"phone" json:"phone"`
	Birthday      time.Time `mapstructure:"birthday" json:"birthday,omitzero"`
	Certification string    `mapstructure:"certification" json:"certification"`

	IRATA struct {
		Level         string `mapstructure:"irata_level" json:"level,omitempty"`
		LicenseNumber string `mapstructure:"irata_license_number" json:"license_number,omitempty"`
	} `mapstructure:",squash" json:"irata"`
	SPRAT struct {
		Level         string `mapstructure:"sprat_level" json:"level,omitempty"`
		LicenseNumber string `mapstructure:"sprat_license_number" json:"license_number,omitempty"`
	} `mapstructure:",squash" json:"sprat"`
	CertificationExpiry time.Time `mapstructure:"certification_expiry" json:"certification_expiry,omitzero"`

	Address struct {
		Street     string `mapstructure:"street_address" json:"street"`
		City       string `mapstructure:"city" json:"city"`
		Region     string `mapstructure:"region" json:"region"`
		Country    string `mapstructure:"country" json:"country"`
		PostalCode string `mapstructure:"postal_code" json:"postal_code"`
	} `mapstructure:",squash" json:"address"`

	EmergencyContact struct {
		Name  string `mapstructure:"emergency_contact_name" json:"name"`
		Phone string `mapstructure:"emergency_contact_phone" json:"phone"`
	} `mapstructure:",squash" json:"emergency_contact"`

	MedicalConditions string `mapstructure:"medical_conditions" json:"medical_conditions,omitempty"`

	// Documents maps file fields to the attached file names.
	Documents map[string]string `mapstructure:"-" json:"documents,omitempty"`
}

// DecodeRegistration builds the typed registration view of an answer set.
// Sensitive fields (password, banking, SIN, driver's license number) are not
// part of the view.
func DecodeRegistration(a Answers) (*Registration, error) {
	raw := make(map[string]any, len(a))
	for _, f := range Catalogue {
		if f.Kind == KindFile || f.Sensitive {
			continue
		}
		raw[f.Name] = a.Text(f.Name)
	}

	var reg Registration
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: dateHook,
		Result:     &reg,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode registration: %w", err)
	}

	for _, part := range a.Attachments() {
		if reg.Documents == nil {
			reg.Documents = make(map[string]string)
		}
		reg.Documents[part.Field] = part.Attachment.Name
	}
	return &reg, nil
}

// dateHook decodes YYYY-MM-DD strings into time.Time, leaving empty dates zero.
func dateHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}
	s := data.(string)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(DateLayout, s)
}
