package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/taxwizard/pkg/domain"
)

// LoggingHooks logs every lifecycle event at info level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	answer := func(_ context.Context, e *domain.AnswerEvent) {
		logger.Info(string(e.Type),
			"session_id", e.SessionID,
			"question", e.QuestionID,
			"value", e.Value,
			"position", e.Position,
		)
	}
	outcome := func(_ context.Context, e *domain.OutcomeEvent) {
		attrs := []any{"session_id", e.SessionID, "status", e.Status}
		if e.Result != nil {
			attrs = append(attrs, "track", e.Result.Track(), "forms", e.Result.Forms())
		}
		if e.Blocker != nil {
			attrs = append(attrs, "blocked_on", e.Blocker.QuestionID)
		}
		logger.Info(string(e.Type), attrs...)
	}
	return domain.LifecycleHooks{
		OnAnswer:   answer,
		OnBack:     answer,
		OnComplete: outcome,
		OnBlock:    outcome,
		OnExit:     outcome,
	}
}
