package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/taxwizard/internal/logging"
	"github.com/aretw0/taxwizard/internal/presentation/tui"
	"github.com/aretw0/taxwizard/internal/runtime"
	"github.com/aretw0/taxwizard/pkg/adapters/memory"
	"github.com/aretw0/taxwizard/pkg/domain"
	"github.com/aretw0/taxwizard/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoop(input string, out *bytes.Buffer, store *memory.Store) *Loop {
	return &Loop{
		Engine:   runtime.NewEngine(nil),
		Sessions: session.NewManager(store),
		Input:    NewLinePump(strings.NewReader(input)),
		Out:      out,
		Render:   tui.PlainRenderer,
		Logger:   logging.NewNop(),
	}
}

func TestLoop_OrganizationFlow(t *testing.T) {
	var out bytes.Buffer
	store := memory.NewStore()
	loop := newLoop("1\n2\nyes\nno\nno\n", &out, store)

	state, err := loop.Run(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, state.Status)

	text := out.String()
	assert.Contains(t, text, "### Question 1 of 3")
	assert.Contains(t, text, "## RF-01")
	assert.Contains(t, text, "- RF01\n- OS01\n")

	saved, err := store.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, saved.Status)
}

func TestLoop_InvalidInputIsReported(t *testing.T) {
	var out bytes.Buffer
	loop := newLoop("maybe\n\nno\nq\n", &out, memory.NewStore())

	state, err := loop.Run(context.Background(), "s1")
	assert.ErrorIs(t, err, errQuit)
	assert.Equal(t, domain.StatusBlocked, state.Status)
	assert.Equal(t, 2, strings.Count(out.String(), "!!! "))
	assert.Contains(t, out.String(), runtime.BlockReasonNoTIN)
}

func TestLoop_BackFromFirstQuestionExits(t *testing.T) {
	var out bytes.Buffer
	loop := newLoop("b\n", &out, memory.NewStore())

	state, err := loop.Run(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExited, state.Status)
	assert.Contains(t, out.String(), "Questionnaire closed.")
}

func TestLoop_QuitAndResume(t *testing.T) {
	store := memory.NewStore()

	var out bytes.Buffer
	state, err := newLoop("yes\nq\n", &out, store).Run(context.Background(), "s1")
	assert.ErrorIs(t, err, errQuit)
	assert.Equal(t, domain.AnswerYes, state.Answers[domain.QuestionHasTIN])

	out.Reset()
	state, err = newLoop("b\nb\n", &out, store).Run(context.Background(), "s1")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Resuming session 's1'.")
	assert.Contains(t, out.String(), "*(current answer)*")
	assert.Equal(t, domain.StatusExited, state.Status)
}

func TestLoop_BlockedCanRevisitTIN(t *testing.T) {
	store := memory.NewStore()

	var out bytes.Buffer
	state, err := newLoop("no\nq\n", &out, store).Run(context.Background(), "s1")
	assert.ErrorIs(t, err, errQuit)
	assert.Equal(t, domain.StatusBlocked, state.Status)
	assert.Contains(t, out.String(), "## Registration blocked")
	assert.Contains(t, out.String(), blockedText)

	out.Reset()
	state, err = newLoop("yes\nb\nyes\norganization\nno\nno\nno\n", &out, store).Run(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, state.Status)
	assert.Contains(t, out.String(), "Resuming session 's1'.")
	assert.Contains(t, out.String(), errBlockedInput.Error())
	assert.Contains(t, out.String(), "- RF01\n")

	saved, err := store.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, saved.Status)
	assert.Equal(t, domain.AnswerYes, saved.Answers[domain.QuestionHasTIN])
}

func TestLoop_BlockedBackInOneRun(t *testing.T) {
	var out bytes.Buffer
	state, err := newLoop("no\nb\nyes\norganization\nno\nno\nno\n", &out, memory.NewStore()).Run(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, state.Status)
	assert.Contains(t, out.String(), blockedText)
	assert.Contains(t, out.String(), "- RF01\n")
}

func TestLoop_EOF(t *testing.T) {
	var out bytes.Buffer
	_, err := newLoop("", &out, memory.NewStore()).Run(context.Background(), "s1")
	assert.True(t, isInterrupted(err))
	assert.NoError(t, handleExecutionError(err))
}

func TestLoop_JSON(t *testing.T) {
	var out bytes.Buffer
	loop := newLoop("no\nq\n", &out, memory.NewStore())
	loop.JSON = true

	_, err := loop.Run(context.Background(), "s1")
	assert.ErrorIs(t, err, errQuit)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var view runtime.View
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &view))
	assert.Equal(t, domain.StatusBlocked, view.Status)
	require.NotNil(t, view.Blocker)
}

func TestExecute_Session(t *testing.T) {
	var out bytes.Buffer
	store := memory.NewStore()
	err := Execute(context.Background(), RunOptions{
		SessionID: "cli",
		Store:     store,
		In:        strings.NewReader("yes\nsole-proprietor\nno\nyes\n"),
		Out:       &out,
	})
	require.NoError(t, err)

	state, err := store.Load(context.Background(), "cli")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, state.Status)
	assert.Contains(t, out.String(), "Residential Property Declaration")
	assert.Contains(t, out.String(), "Session 'cli' finished (completed).")
}

func TestExecute_WatchRequiresCatalog(t *testing.T) {
	err := Execute(context.Background(), RunOptions{Watch: true, Out: &bytes.Buffer{}})
	assert.ErrorContains(t, err, "--watch requires --catalog")
}

func TestParseCommand(t *testing.T) {
	view := &runtime.View{Question: &runtime.QuestionView{
		Options: []domain.Option{{Value: "yes"}, {Value: "no"}},
	}}

	tests := []struct {
		line string
		want command
	}{
		{"1", command{kind: cmdAnswer, value: "yes"}},
		{" 2 ", command{kind: cmdAnswer, value: "no"}},
		{"3", command{kind: cmdAnswer, value: "3"}},
		{"no", command{kind: cmdAnswer, value: "no"}},
		{"B", command{kind: cmdBack}},
		{"restart", command{kind: cmdRestart}},
		{"quit", command{kind: cmdQuit}},
		{"?", command{kind: cmdHelp}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCommand(tt.line, view))
		})
	}
}
