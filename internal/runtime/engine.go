package runtime

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/taxwizard/pkg/catalog"
	"github.com/aretw0/taxwizard/pkg/domain"
)

// Engine is the questionnaire state machine.
// It holds no session data: every operation takes a State and returns a new one,
// leaving the input untouched.
type Engine struct {
	catalog *catalog.Catalog
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	now     func() time.Time
}

// EngineOption defines a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source used for state timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine over the given catalog.
// A nil catalog selects catalog.Default().
func NewEngine(c *catalog.Catalog, opts ...EngineOption) *Engine {
	if c == nil {
		c = catalog.Default()
	}
	e := &Engine{
		catalog: c,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the question catalog driving the engine.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Start creates the initial state for a session.
func (e *Engine) Start(ctx context.Context, sessionID string) *domain.State {
	state := domain.NewState(sessionID)
	now := e.now().UTC()
	state.CreatedAt = now
	state.UpdatedAt = now
	e.logger.Debug("session started", "session_id", sessionID)
	return state
}

// Restart discards all answers and returns to the first question.
func (e *Engine) Restart(ctx context.Context, state *domain.State) *domain.State {
	next := e.Start(ctx, state.SessionID)
	e.logger.Debug("session restarted", "session_id", state.SessionID, "from_status", state.Status)
	return next
}

// Submit records value as the answer to the current question and moves forward.
// The returned state is completed or blocked when the answer settles the outcome.
func (e *Engine) Submit(ctx context.Context, state *domain.State, value string) (*domain.State, error) {
	return e.advance(ctx, state, value)
}

// Back moves one question backward. From the first question the session exits;
// from the blocked state it returns to the question that caused the block.
func (e *Engine) Back(ctx context.Context, state *domain.State) (*domain.State, error) {
	return e.retreat(ctx, state)
}

// Render builds the view of the current state without changing it.
func (e *Engine) Render(ctx context.Context, state *domain.State) (*View, error) {
	relevant := RelevantQuestions(e.catalog, state.Answers)
	view := &View{
		SessionID: state.SessionID,
		Status:    state.Status,
		Position:  state.Position(),
		Total:     len(relevant),
		IsAtStart: len(state.History) <= 1,
		Answers:   state.Answers.Clone(),
		Result:    domain.Envelope(state.Result),
	}
	if state.Blocker != nil {
		b := *state.Blocker
		view.Blocker = &b
	}

	if state.Status != domain.StatusInProgress && state.Status != domain.StatusBlocked {
		return view, nil
	}

	q, err := currentQuestion(state, relevant)
	if err != nil {
		return nil, err
	}
	view.Question = newQuestionView(q)
	view.Selected = state.Answers.Get(q.ID)
	view.IsLast = state.Position() == len(relevant)-1
	return view, nil
}

// Relevant returns the questions that currently apply to state.
func (e *Engine) Relevant(state *domain.State) []domain.Question {
	return RelevantQuestions(e.catalog, state.Answers)
}

func currentQuestion(state *domain.State, relevant []domain.Question) (domain.Question, error) {
	pos := state.Position()
	if pos < 0 || pos >= len(relevant) {
		return domain.Question{}, &PositionError{SessionID: state.SessionID, Position: pos, Total: len(relevant)}
	}
	return relevant[pos], nil
}

func (e *Engine) touch(state *domain.State) {
	state.UpdatedAt = e.now().UTC()
}

func (e *Engine) eventBase(t domain.EventType, state *domain.State) domain.EventBase {
	return domain.EventBase{
		Timestamp: e.now().UTC(),
		Type:      t,
		SessionID: state.SessionID,
	}
}

func (e *Engine) emitAnswer(ctx context.Context, state *domain.State, q domain.Question, value string) {
	if e.hooks.OnAnswer == nil {
		return
	}
	e.hooks.OnAnswer(ctx, &domain.AnswerEvent{
		EventBase:  e.eventBase(domain.EventAnswer, state),
		QuestionID: q.ID,
		Value:      value,
		Position:   state.Position(),
	})
}

func (e *Engine) emitBack(ctx context.Context, state *domain.State, questionID string) {
	if e.hooks.OnBack == nil {
		return
	}
	e.hooks.OnBack(ctx, &domain.AnswerEvent{
		EventBase:  e.eventBase(domain.EventBack, state),
		QuestionID: questionID,
		Value:      state.Answers.Get(questionID),
		Position:   state.Position(),
	})
}

func (e *Engine) emitOutcome(ctx context.Context, state *domain.State) {
	var hook func(context.Context, *domain.OutcomeEvent)
	var t domain.EventType
	switch state.Status {
	case domain.StatusCompleted:
		hook, t = e.hooks.OnComplete, domain.EventComplete
	case domain.StatusBlocked:
		hook, t = e.hooks.OnBlock, domain.EventBlock
	case domain.StatusExited:
		hook, t = e.hooks.OnExit, domain.EventExit
	}
	if hook == nil {
		return
	}
	hook(ctx, &domain.OutcomeEvent{
		EventBase: e.eventBase(t, state),
		Status:    state.Status,
		Result:    state.Result,
		Blocker:   state.Blocker,
		Answers:   state.Answers.Clone(),
	})
}
