package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/taxwizard/internal/runtime"
	"github.com/aretw0/taxwizard/pkg/catalog"
	"github.com/aretw0/taxwizard/pkg/domain"
)

const (
	startID  = "start"
	routeID  = "route"
	blockID  = "blocked"
	maxLabel = 48
)

// GraphOverlay contains dynamic session data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// OverlayFor derives the visited/current overlay of a session.
// A nil state yields a nil overlay.
func OverlayFor(c *catalog.Catalog, state *domain.State) *GraphOverlay {
	if state == nil {
		return nil
	}
	relevant := runtime.RelevantQuestions(c, state.Answers)
	overlay := &GraphOverlay{VisitedNodes: []string{startID}}
	for _, q := range relevant {
		if state.Answers.Has(q.ID) {
			overlay.VisitedNodes = append(overlay.VisitedNodes, q.ID)
		}
	}

	switch state.Status {
	case domain.StatusInProgress:
		if pos := state.Position(); pos >= 0 && pos < len(relevant) {
			overlay.CurrentNode = relevant[pos].ID
		}
	case domain.StatusCompleted:
		overlay.CurrentNode = routeID
	case domain.StatusBlocked:
		overlay.CurrentNode = blockID
	}
	return overlay
}

// Mermaid renders the catalog as a flowchart, highlighting the path of state if given.
func Mermaid(c *catalog.Catalog, state *domain.State) string {
	return GenerateMermaid(c.Questions(), OverlayFor(c, state))
}

// GenerateMermaid produces a Mermaid flowchart from an ordered question list.
// Questions render as parallelograms (input); conditional edges carry the relevance rule.
func GenerateMermaid(questions []domain.Question, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString(fmt.Sprintf("    %s((\"%s\"))\n", startID, startID))

	for _, q := range questions {
		sb.WriteString(fmt.Sprintf("    %s[/\"%s\"/]\n", sanitizeMermaidID(q.ID), q.ID))
	}
	sb.WriteString(fmt.Sprintf("    %s[[\"%s\"]]\n", routeID, "routing decision"))
	sb.WriteString(fmt.Sprintf("    %s{{\"%s\"}}\n", blockID, "blocked: no TIN"))

	// Each question falls through to the next one that is relevant; the
	// conditional edge shows when a question is entered at all.
	prev := startID
	for _, q := range questions {
		to := sanitizeMermaidID(q.ID)
		if q.Condition != "" {
			sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", prev, edgeLabel(q.Condition), to))
		} else {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", prev, to))
		}
		prev = to
	}
	sb.WriteString(fmt.Sprintf("    %s --> %s\n", prev, routeID))

	if len(questions) > 0 && questions[0].ID == domain.QuestionHasTIN {
		sb.WriteString(fmt.Sprintf("    %s -. \"%s\" .-> %s\n", routeID, domain.QuestionHasTIN+" = no", blockID))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast on either theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if safeID != "" && !seen[safeID] {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}
		if overlay.CurrentNode != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode)))
		}
	}

	return sb.String()
}

func edgeLabel(condition string) string {
	label := strings.Join(strings.Fields(condition), " ")
	label = strings.ReplaceAll(label, "\"", "'")
	if len(label) > maxLabel {
		label = label[:maxLabel-3] + "..."
	}
	return label
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
