// Package redact masks personal data before a wizard state leaves the process
// (API responses, change streams, logs).
package redact

import (
	"fmt"
	"regexp"

	"github.com/aretw0/onboard/pkg/domain"
)

// Mask replaces the value of a masked field.
const Mask = "***"

// Redactor masks catalogue fields flagged Sensitive plus any field whose name
// matches one of the extra patterns.
type Redactor struct {
	patterns []*regexp.Regexp
}

// New compiles the extra patterns.
func New(patterns ...string) (*Redactor, error) {
	r := &Redactor{patterns: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}
	return r, nil
}

// Masked reports whether the value of field must not be exposed.
func (r *Redactor) Masked(field string) bool {
	if f, ok := domain.LookupField(field); ok && f.Sensitive {
		return true
	}
	for _, p := range r.patterns {
		if p.MatchString(field) {
			return true
		}
	}
	return false
}

// State returns a copy of state with masked fields hidden and attachment
// payloads dropped. The input is left untouched.
func (r *Redactor) State(state *domain.State) *domain.State {
	if state == nil {
		return nil
	}
	out := state.Snapshot()
	out.Sealed = nil
	for name, v := range out.Answers {
		out.Answers[name] = r.value(name, v)
	}
	return out
}

// Diff returns a copy of d with the same masking applied to its answers.
func (r *Redactor) Diff(d *domain.StateDiff) *domain.StateDiff {
	if d == nil {
		return nil
	}
	out := *d
	if d.Answers != nil {
		out.Answers = make(map[string]any, len(d.Answers))
		for name, raw := range d.Answers {
			v, ok := raw.(domain.Value)
			if !ok {
				out.Answers[name] = raw
				continue
			}
			out.Answers[name] = r.value(name, v)
		}
	}
	return &out
}

func (r *Redactor) value(name string, v domain.Value) domain.Value {
	if v.File != nil {
		f := v.File.Clone()
		f.Data = nil
		v.File = f
	}
	if v.Text != "" && r.Masked(name) {
		v.Text = Mask
	}
	return v
}
