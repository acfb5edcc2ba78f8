// Package graph renders the conversation graph as a Mermaid flowchart.
package graph

import (
	"fmt"
	"strings"

	"github.com/unifecaf/triagebot/internal/runtime"
	"github.com/unifecaf/triagebot/pkg/domain"
)

const endNode = "END"

// Overlay highlights the step a session is in.
type Overlay struct {
	Current domain.Step
}

// GenerateMermaid produces a Mermaid flowchart from the transition list.
// Shapes:
// - ASK_ROLE: ((Circle)), the entry point
// - steps that take free text: [/Parallelogram/]
// - END: (((Double circle)))
// - others: [Rectangle]
func GenerateMermaid(edges []runtime.Transition, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	freeText := map[domain.Step]bool{}
	for _, e := range edges {
		if e.Label == "" {
			freeText[e.From] = true
		}
	}

	for _, step := range domain.Steps() {
		opener, closer := "[", "]"
		switch {
		case step == domain.StepAskRole:
			opener, closer = "((", "))"
		case freeText[step]:
			opener, closer = "[/", "/]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", step, opener, step, closer)
	}
	fmt.Fprintf(&sb, "    %s(((\"Fim\")))\n", endNode)

	for _, e := range edges {
		to := e.To.String()
		arrow := "-->"
		if e.Terminal {
			to = endNode
			arrow = "-.->"
		}
		if e.Label != "" {
			label := strings.ReplaceAll(e.Label, "\"", "'")
			arrow = fmt.Sprintf("-- \"%s\" -->", label)
			if e.Terminal {
				arrow = fmt.Sprintf("-. \"%s\" .->", label)
			}
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", e.From, arrow, to)
	}

	if overlay != nil && overlay.Current.Valid() {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		fmt.Fprintf(&sb, "    class %s current;\n", overlay.Current)
	}
	return sb.String()
}
