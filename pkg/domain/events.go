package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventAnswer   EventType = "answer"
	EventBack     EventType = "back"
	EventComplete EventType = "complete"
	EventBlock    EventType = "block"
	EventExit     EventType = "exit"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// AnswerEvent represents a recorded answer or a backward step.
type AnswerEvent struct {
	EventBase
	QuestionID string `json:"question_id"`
	Value      string `json:"value,omitempty"`
	Position   int    `json:"position"`
}

// OutcomeEvent represents a session reaching a terminal status.
type OutcomeEvent struct {
	EventBase
	Status  Status        `json:"status"`
	Result  RoutingResult `json:"-"`
	Blocker *Blocker      `json:"blocker,omitempty"`
	Answers Answers       `json:"answers"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnAnswer   func(context.Context, *AnswerEvent)
	OnBack     func(context.Context, *AnswerEvent)
	OnComplete func(context.Context, *OutcomeEvent)
	OnBlock    func(context.Context, *OutcomeEvent)
	OnExit     func(context.Context, *OutcomeEvent)
}

// Merge returns hooks that invoke h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnAnswer:   chainAnswer(h.OnAnswer, other.OnAnswer),
		OnBack:     chainAnswer(h.OnBack, other.OnBack),
		OnComplete: chainOutcome(h.OnComplete, other.OnComplete),
		OnBlock:    chainOutcome(h.OnBlock, other.OnBlock),
		OnExit:     chainOutcome(h.OnExit, other.OnExit),
	}
}

func chainAnswer(a, b func(context.Context, *AnswerEvent)) func(context.Context, *AnswerEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *AnswerEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainOutcome(a, b func(context.Context, *OutcomeEvent)) func(context.Context, *OutcomeEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *OutcomeEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
