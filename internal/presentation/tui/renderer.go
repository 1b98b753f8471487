package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Renderer turns markdown into terminal text.
type Renderer func(string) (string, error)

// NewRenderer returns a glamour renderer with automatic light/dark detection.
// It falls back to PlainRenderer if glamour cannot be initialised.
func NewRenderer() Renderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return PlainRenderer
	}
	return r.Render
}

// PlainRenderer returns the markdown untouched, for pipes and tests.
func PlainRenderer(markdown string) (string, error) {
	return strings.TrimSpace(markdown) + "\n", nil
}
