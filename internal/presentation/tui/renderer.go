package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/taxwizard/internal/runtime"
	"github.com/aretw0/taxwizard/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// Renderer turns markdown into terminal output.
type Renderer func(string) (string, error)

// NewRenderer returns a Renderer using glamour.
// It falls back to plain markdown when no terminal style can be built.
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

// PlainRenderer returns markdown untouched, for pipes and tests.
func PlainRenderer(markdown string) (string, error) {
	return markdown, nil
}

// QuestionMarkdown renders the current question as a numbered option card.
func QuestionMarkdown(view *runtime.View) string {
	if view == nil || view.Question == nil {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "### Question %d of %d\n\n", view.Position+1, view.Total)
	fmt.Fprintf(&sb, "**%s**\n\n", view.Question.Prompt)
	for i, opt := range view.Question.Options {
		marker := ""
		if opt.Value == view.Selected {
			marker = " *(current answer)*"
		}
		fmt.Fprintf(&sb, "%d. %s%s\n", i+1, opt.Label, marker)
		if opt.Description != "" {
			fmt.Fprintf(&sb, "   %s\n", opt.Description)
		}
	}
	return sb.String()
}

// OutcomeMarkdown renders a finished session: the forms or the blocker.
func OutcomeMarkdown(view *runtime.View) string {
	if view == nil {
		return ""
	}
	var sb strings.Builder
	switch view.Status {
	case domain.StatusBlocked:
		sb.WriteString("## Registration blocked\n\n")
		if view.Blocker != nil {
			fmt.Fprintf(&sb, "%s\n", view.Blocker.Reason)
		}
	case domain.StatusCompleted:
		result := view.Result
		if result == nil {
			return ""
		}
		fmt.Fprintf(&sb, "## %s\n\n", result.UserType)
		fmt.Fprintf(&sb, "%s\n\n", result.Description)
		if len(result.Forms) > 0 {
			sb.WriteString("Required forms:\n\n")
			for _, f := range result.Forms {
				fmt.Fprintf(&sb, "- %s\n", f)
			}
		} else {
			sb.WriteString("No forms are required.\n")
		}
	case domain.StatusExited:
		sb.WriteString("Questionnaire closed.\n")
	}
	return sb.String()
}
