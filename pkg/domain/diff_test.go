package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	inProgress := StatusInProgress
	completed := StatusCompleted

	base := &State{
		SessionID: "sess-1",
		Status:    StatusInProgress,
		Answers:   Answers{QuestionHasTIN: AnswerYes},
		History:   []int{0, 1},
	}

	tests := []struct {
		name     string
		old      *State
		new      *State
		wantDiff *StateDiff
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new:  base,
			wantDiff: &StateDiff{
				SessionID: "sess-1",
				Status:    &inProgress,
				Answers:   map[string]any{QuestionHasTIN: AnswerYes},
				History:   []int{0, 1},
			},
		},
		{
			name:     "No Changes",
			old:      base,
			new:      base.Snapshot(),
			wantDiff: nil,
		},
		{
			name: "Answer Added",
			old:  base,
			new: &State{
				SessionID: "sess-1",
				Status:    StatusInProgress,
				Answers:   Answers{QuestionHasTIN: AnswerYes, QuestionApplicantType: ApplicantOrganization},
				History:   []int{0, 1, 2},
			},
			wantDiff: &StateDiff{
				SessionID: "sess-1",
				Answers:   map[string]any{QuestionApplicantType: ApplicantOrganization},
				History:   []int{0, 1, 2},
			},
		},
		{
			name: "Answer Pruned And History Popped",
			old: &State{
				SessionID: "sess-1",
				Status:    StatusInProgress,
				Answers:   Answers{QuestionHasTIN: AnswerYes, QuestionHasOwners: AnswerNo},
				History:   []int{0, 1, 2},
			},
			new: base,
			wantDiff: &StateDiff{
				SessionID: "sess-1",
				Answers:   map[string]any{QuestionHasOwners: nil},
				History:   []int{0, 1},
			},
		},
		{
			name: "Completion Carries Result",
			old:  base,
			new: &State{
				SessionID: "sess-1",
				Status:    StatusCompleted,
				Answers:   base.Answers.Clone(),
				History:   []int{0, 1},
				Result:    PropertyOnly{RequiredForms: []string{FormPropertyDeclaration}},
			},
			wantDiff: &StateDiff{
				SessionID: "sess-1",
				Status:    &completed,
				Result: &RoutingEnvelope{
					Track:    TrackPropertyOnly,
					UserType: "RP-01",
					Forms:    []string{FormPropertyDeclaration},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			assert.Equal(t, tt.wantDiff, got)
		})
	}
}

func TestDiff_JSONDeletion(t *testing.T) {
	old := &State{SessionID: "s", Status: StatusInProgress, Answers: Answers{"a": "x"}, History: []int{0}}
	next := &State{SessionID: "s", Status: StatusInProgress, Answers: Answers{}, History: []int{0}}

	data, err := json.Marshal(Diff(old, next))
	require.NoError(t, err)
	assert.JSONEq(t, `{"session_id":"s","answers":{"a":null}}`, string(data))
}
