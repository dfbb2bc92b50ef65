package taxwizard

import (
	"context"

	"github.com/aretw0/taxwizard/pkg/domain"
)

// Session is a stateful wrapper over Engine for callers that keep a session in memory.
// It is not safe for concurrent use; hosts sharing sessions use pkg/session.Manager.
type Session struct {
	engine *Engine
	state  *domain.State
}

// Outcome is the routing status of a session: in progress, blocked or completed.
type Outcome struct {
	Status  domain.Status
	Result  domain.RoutingResult
	Blocker *domain.Blocker
}

// State returns a copy of the underlying state, suitable for persistence.
func (s *Session) State() *domain.State {
	return s.state.Snapshot()
}

// CurrentQuestion returns the question on display.
// ok is false once the session completed or exited.
func (s *Session) CurrentQuestion(ctx context.Context) (q domain.Question, ok bool, err error) {
	view, err := s.engine.Render(ctx, s.state)
	if err != nil || view.Question == nil {
		return domain.Question{}, false, err
	}
	q, found := s.engine.Catalog().Question(view.Question.ID)
	return q, found, nil
}

// Selected returns the recorded answer of the current question, or "".
func (s *Session) Selected(ctx context.Context) string {
	view, err := s.engine.Render(ctx, s.state)
	if err != nil {
		return ""
	}
	return view.Selected
}

// IsAtStart reports whether the first question is on display.
func (s *Session) IsAtStart() bool {
	return len(s.state.History) <= 1
}

// IsLastQuestion reports whether answering the current question completes the sequence,
// unless that answer changes which questions follow.
func (s *Session) IsLastQuestion(ctx context.Context) bool {
	view, err := s.engine.Render(ctx, s.state)
	return err == nil && view.IsLast
}

// SubmitAnswer answers the current question.
func (s *Session) SubmitAnswer(ctx context.Context, value string) error {
	next, err := s.engine.Submit(ctx, s.state, value)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

// GoBack retreats one question. exited is true when the applicant left the
// questionnaire from its first question.
func (s *Session) GoBack(ctx context.Context) (exited bool, err error) {
	next, err := s.engine.Back(ctx, s.state)
	if err != nil {
		return false, err
	}
	s.state = next
	return next.Status == domain.StatusExited, nil
}

// Result reports the routing outcome so far.
func (s *Session) Result() Outcome {
	out := Outcome{Status: s.state.Status, Result: s.state.Result}
	if s.state.Blocker != nil {
		b := *s.state.Blocker
		out.Blocker = &b
	}
	return out
}

// Restart clears all answers and returns to the first question.
func (s *Session) Restart(ctx context.Context) {
	s.state = s.engine.Restart(ctx, s.state)
}
