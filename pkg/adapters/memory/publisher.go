package memory

import (
	"context"
	"sync"

	"github.com/aretw0/taxwizard/pkg/ports"
)

// Publisher implements ports.ResultPublisher by keeping events in memory.
// It backs single-process deployments and tests.
type Publisher struct {
	mu     sync.Mutex
	events []ports.RoutingEvent
}

// NewPublisher creates an empty in-memory publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Publish records the event.
func (p *Publisher) Publish(ctx context.Context, event ports.RoutingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns the recorded events in publication order.
func (p *Publisher) Events() []ports.RoutingEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ports.RoutingEvent(nil), p.events...)
}
