package ports

import (
	"context"
	"time"

	"github.com/aretw0/taxwizard/pkg/domain"
)

// RoutingEvent is published once per session that reaches a terminal status.
type RoutingEvent struct {
	SessionID  string                  `json:"session_id"`
	Status     domain.Status           `json:"status"`
	Result     *domain.RoutingEnvelope `json:"result,omitempty"`
	Blocker    *domain.Blocker         `json:"blocker,omitempty"`
	Answers    domain.Answers          `json:"answers"`
	OccurredAt time.Time               `json:"occurred_at"`
}

// ResultPublisher hands routing outcomes to downstream systems (form issuance, analytics).
type ResultPublisher interface {
	Publish(ctx context.Context, event RoutingEvent) error
}

// NewRoutingEvent builds the event for a terminal state.
func NewRoutingEvent(state *domain.State) RoutingEvent {
	ev := RoutingEvent{
		SessionID:  state.SessionID,
		Status:     state.Status,
		Result:     domain.Envelope(state.Result),
		Answers:    state.Answers.Clone(),
		OccurredAt: state.UpdatedAt,
	}
	if state.Blocker != nil {
		b := *state.Blocker
		ev.Blocker = &b
	}
	return ev
}
