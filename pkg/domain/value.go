package domain

import (
	"time"
)

// ValueKind discriminates the shape of an answer.
type ValueKind string

const (
	KindText   ValueKind = "text"
	KindChoice ValueKind = "choice"
	KindDate   ValueKind = "date"
	KindFile   ValueKind = "file"
)

// DateLayout is the canonical encoding of date answers.
const DateLayout = time.DateOnly

// Value is one answer. Text, choice and date answers live in Text
// (dates as YYYY-MM-DD); file answers live in File.
type Value struct {
	Kind ValueKind   `json:"kind"`
	Text string      `json:"text,omitempty"`
	File *Attachment `json:"file,omitempty"`
}

// Text builds a free-text answer.
func Text(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// Choice builds an enumerated-choice answer.
func Choice(option string) Value {
	return Value{Kind: KindChoice, Text: option}
}

// Date builds a date answer. The zero time yields an empty date.
func Date(t time.Time) Value {
	if t.IsZero() {
		return Value{Kind: KindDate}
	}
	return Value{Kind: KindDate, Text: t.Format(DateLayout)}
}

// File builds a file answer. A nil attachment yields an empty file value.
func File(a *Attachment) Value {
	return Value{Kind: KindFile, File: a}
}

// Empty returns the neutral default for a kind.
func Empty(kind ValueKind) Value {
	return Value{Kind: kind}
}

// IsZero reports whether the answer carries no data.
func (v Value) IsZero() bool {
	if v.Kind == KindFile {
		return v.File == nil
	}
	return v.Text == ""
}

// String returns the scalar encoding of the answer. File answers render as
// the attachment name.
func (v Value) String() string {
	if v.Kind == KindFile {
		if v.File == nil {
			return ""
		}
		return v.File.Name
	}
	return v.Text
}

// Time parses a date answer. ok is false for empty or malformed dates.
func (v Value) Time() (t time.Time, ok bool) {
	if v.Kind != KindDate || v.Text == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, v.Text)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
