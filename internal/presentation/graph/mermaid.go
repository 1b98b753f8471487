package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/onboard/internal/runtime"
	"github.com/aretw0/onboard/pkg/domain"
)

// Overlay contains wizard progress to visualize on the graph.
type Overlay struct {
	Visited []domain.StepID
	Current domain.StepID
}

// OverlayOf builds the overlay of a wizard state.
func OverlayOf(s *domain.State) *Overlay {
	if s == nil {
		return nil
	}
	return &Overlay{Visited: s.History, Current: s.CurrentStep}
}

// GenerateMermaid produces a Mermaid flowchart of the step graph.
// Shapes:
// - First step: ((Circle))
// - Terminal step: ([Stadium])
// - Step with file uploads: [/Parallelogram/]
// - Default: [Rectangle]
// Conditional skips are drawn dotted with their condition as label.
func GenerateMermaid(g *runtime.Graph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, step := range g.Steps() {
		opener, closer := "[", "]"
		switch {
		case step == g.First():
			opener, closer = "((", "))"
		case g.IsTerminal(step):
			opener, closer = "([", "])"
		case hasFiles(step):
			opener, closer = "[/", "/]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeID(step), opener, escape(step.Title()), closer)
	}

	for _, e := range g.Edges() {
		arrow := "-->"
		if e.Condition != "" {
			arrow = fmt.Sprintf("-. \"%s\" .->", escape(e.Condition))
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeID(e.From), arrow, sanitizeID(e.To))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[domain.StepID]bool)
		for _, id := range overlay.Visited {
			if seen[id] || !g.Contains(id) || id == overlay.Current {
				continue
			}
			seen[id] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", sanitizeID(id))
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeID(overlay.Current))
		}
	}

	return sb.String()
}

func hasFiles(step domain.StepID) bool {
	for _, f := range domain.FieldsOf(step) {
		if f.Kind == domain.KindFile {
			return true
		}
	}
	return false
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeID(id domain.StepID) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_").Replace(string(id))
}
