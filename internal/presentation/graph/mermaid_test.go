package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/taxwizard/internal/presentation/graph"
	"github.com/aretw0/taxwizard/pkg/catalog"
	"github.com/aretw0/taxwizard/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name      string
		questions []domain.Question
		contains  []string
	}{
		{
			name:      "Input Shape",
			questions: []domain.Question{{ID: "q1"}},
			contains: []string{
				"start((\"start\"))",
				"q1[/\"q1\"/]",
				"start --> q1",
				"q1 --> route",
			},
		},
		{
			name:      "ID Sanitization",
			questions: []domain.Question{{ID: "has-owners"}},
			contains:  []string{"has_owners[/\"has-owners\"/]"},
		},
		{
			name: "Conditional Edge Escaping",
			questions: []domain.Question{
				{ID: "a"},
				{ID: "b", Condition: `is("a", "yes")`},
			},
			contains: []string{"a -- \"is('a', 'yes')\" --> b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.questions, nil)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			assert.NotContains(t, got, "classDef")
		})
	}
}

func TestGenerateMermaid_LongConditionIsTruncated(t *testing.T) {
	got := graph.GenerateMermaid([]domain.Question{
		{ID: "a", Condition: strings.Repeat("x", 100)},
	}, nil)
	assert.Contains(t, got, "...\" --> a")
	assert.NotContains(t, got, strings.Repeat("x", 60))
}

func TestMermaid_Catalog(t *testing.T) {
	got := graph.Mermaid(catalog.Default(), nil)

	assert.True(t, strings.HasPrefix(got, "graph TD\n"))
	for _, id := range catalog.Default().IDs() {
		assert.Contains(t, got, strings.ReplaceAll(id, "-", "_")+"[/")
	}
	assert.Contains(t, got, "route -. \"has-tin = no\" .-> blocked")
}

func TestMermaid_Overlay(t *testing.T) {
	c := catalog.Default()

	t.Run("in progress", func(t *testing.T) {
		state := domain.NewState("s1")
		state.Answers[domain.QuestionHasTIN] = domain.AnswerYes
		state.History = append(state.History, 1)

		got := graph.Mermaid(c, state)
		assert.Contains(t, got, "class start visited;")
		assert.Contains(t, got, "class has_tin visited;")
		assert.Contains(t, got, "class applicant_type current;")
	})

	t.Run("completed", func(t *testing.T) {
		state := domain.NewState("s2")
		state.Status = domain.StatusCompleted
		state.Answers[domain.QuestionHasTIN] = domain.AnswerYes

		assert.Contains(t, graph.Mermaid(c, state), "class route current;")
	})

	t.Run("blocked", func(t *testing.T) {
		state := domain.NewState("s3")
		state.Status = domain.StatusBlocked
		state.Answers[domain.QuestionHasTIN] = domain.AnswerNo

		assert.Contains(t, graph.Mermaid(c, state), "class blocked current;")
	})
}
