package domain

// Answers is the Field Store: the accumulated answer set of one wizard.
// It is keyed by field name and, once built by NewAnswers, always holds a
// value for every catalogue field.
type Answers map[string]Value

// NewAnswers returns an answer set with every catalogue field at its default.
func NewAnswers() Answers {
	a := make(Answers, len(Catalogue))
	a.Reset()
	return a
}

// Set records a value. Last write wins; it never fails.
func (a Answers) Set(field string, v Value) {
	a[field] = v
}

// Get returns the value of a field. Unknown fields read as empty text.
func (a Answers) Get(field string) Value {
	if v, ok := a[field]; ok {
		return v
	}
	if f, ok := LookupField(field); ok {
		return Empty(f.Kind)
	}
	return Empty(KindText)
}

// Text returns the scalar encoding of a field.
func (a Answers) Text(field string) string {
	return a.Get(field).String()
}

// Attachment returns the attachment of a file field, or nil.
func (a Answers) Attachment(field string) *Attachment {
	v := a.Get(field)
	if v.Kind != KindFile {
		return nil
	}
	return v.File
}

// Reset restores every field to its neutral default and drops anything else.
// Callers holding attachments must release their previews first.
func (a Answers) Reset() {
	for k := range a {
		delete(a, k)
	}
	for _, f := range Catalogue {
		a[f.Name] = Empty(f.Kind)
	}
}

// Clone returns a deep copy; attachments are cloned so preview pointers are not shared.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		if v.File != nil {
			v.File = v.File.Clone()
		}
		out[k] = v
	}
	return out
}

// Scalars returns the scalar encoding of every non-file catalogue field, empty ones included.
func (a Answers) Scalars() []FieldValue {
	out := make([]FieldValue, 0, len(Catalogue))
	for _, f := range Catalogue {
		if f.Kind == KindFile {
			continue
		}
		out = append(out, FieldValue{Name: f.Name, Value: a.Text(f.Name)})
	}
	return out
}

// Attachments returns every present attachment in catalogue order.
func (a Answers) Attachments() []FilePart {
	var out []FilePart
	for _, f := range Catalogue {
		if f.Kind != KindFile {
			continue
		}
		if att := a.Attachment(f.Name); att != nil {
			out = append(out, FilePart{Field: f.Name, Attachment: att})
		}
	}
	return out
}
