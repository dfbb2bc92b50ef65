package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/taxwizard/pkg/domain"
)

// advance records an answer, re-derives the relevant questions and decides
// whether the session moves forward, completes or blocks.
func (e *Engine) advance(ctx context.Context, state *domain.State, value string) (*domain.State, error) {
	if state.Status != domain.StatusInProgress {
		return nil, fmt.Errorf("%w: cannot answer while %s", domain.ErrSessionClosed, state.Status)
	}
	value, err := SanitizeInput(value)
	if err != nil {
		return nil, err
	}
	if value == "" {
		return nil, domain.ErrEmptyAnswer
	}

	q, err := currentQuestion(state, RelevantQuestions(e.catalog, state.Answers))
	if err != nil {
		return nil, err
	}
	if !q.HasOption(value) {
		return nil, fmt.Errorf("%w: %q is not an option of %s", domain.ErrInvalidOption, value, q.ID)
	}

	next := state.Snapshot()
	next.Answers[q.ID] = value
	e.touch(next)

	relevant := RelevantQuestions(e.catalog, next.Answers)
	if removed := pruneAnswers(next.Answers, relevant); len(removed) > 0 {
		e.logger.Debug("answers pruned", "session_id", next.SessionID, "questions", removed)
	}
	e.emitAnswer(ctx, next, q, value)

	pos := next.Position()
	switch {
	case TerminatesEarly(next.Answers):
		e.finish(next)
	case pos >= len(relevant)-1:
		e.finish(next)
	default:
		next.History = append(next.History, pos+1)
		e.logger.Debug("question advanced", "session_id", next.SessionID, "question", relevant[pos+1].ID, "position", pos+1)
		return next, nil
	}

	e.emitOutcome(ctx, next)
	return next, nil
}

// finish settles a session that has no further questions to ask.
func (e *Engine) finish(state *domain.State) {
	result, blocker := Verdict(state.Answers)
	if blocker != nil {
		state.Status = domain.StatusBlocked
		state.Blocker = blocker
		e.logger.Info("session blocked", "session_id", state.SessionID, "question", blocker.QuestionID)
		return
	}
	if IsFallback(state.Answers) {
		e.logger.Warn("routing fallback applied", "session_id", state.SessionID, "answers", state.Answers)
	}
	state.Status = domain.StatusCompleted
	state.Blocker = nil
	state.Result = result
	e.logger.Info("session completed", "session_id", state.SessionID, "track", result.Track(), "forms", result.Forms())
}

// retreat pops the history stack. The previously recorded answer of the
// question now displayed is kept, so the caller can pre-select it.
func (e *Engine) retreat(ctx context.Context, state *domain.State) (*domain.State, error) {
	switch state.Status {
	case domain.StatusCompleted, domain.StatusExited:
		return nil, fmt.Errorf("%w: cannot go back while %s", domain.ErrSessionClosed, state.Status)
	}

	next := state.Snapshot()
	e.touch(next)

	if next.Status == domain.StatusBlocked {
		next.Status = domain.StatusInProgress
		questionID := ""
		if next.Blocker != nil {
			questionID = next.Blocker.QuestionID
		}
		next.Blocker = nil
		e.logger.Debug("blocked question revisited", "session_id", next.SessionID, "question", questionID)
		e.emitBack(ctx, next, questionID)
		return next, nil
	}

	if len(next.History) <= 1 {
		next.Status = domain.StatusExited
		e.logger.Debug("questionnaire exited", "session_id", next.SessionID)
		e.emitOutcome(ctx, next)
		return next, nil
	}

	next.History = next.History[:len(next.History)-1]
	q, err := currentQuestion(next, RelevantQuestions(e.catalog, next.Answers))
	if err != nil {
		return nil, err
	}
	e.logger.Debug("question retreated", "session_id", next.SessionID, "question", q.ID, "position", next.Position())
	e.emitBack(ctx, next, q.ID)
	return next, nil
}
