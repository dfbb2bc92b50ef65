package ports

import (
	"context"

	"github.com/aretw0/taxwizard/internal/runtime"
	"github.com/aretw0/taxwizard/pkg/catalog"
	"github.com/aretw0/taxwizard/pkg/domain"
)

// StatelessEngine defines the questionnaire core as seen by adapters (HTTP, MCP, CLI)
// that keep session state outside the engine.
type StatelessEngine interface {
	// Start creates the initial state for a session.
	Start(ctx context.Context, sessionID string) *domain.State

	// Render calculates the view for a given state without advancing it.
	Render(ctx context.Context, state *domain.State) (*runtime.View, error)

	// Submit answers the current question, returning the new state.
	Submit(ctx context.Context, state *domain.State, value string) (*domain.State, error)

	// Back retreats one question, or exits from the first one.
	Back(ctx context.Context, state *domain.State) (*domain.State, error)

	// Restart returns an empty state for the same session.
	Restart(ctx context.Context, state *domain.State) *domain.State

	// Catalog returns the question catalog for introspection.
	Catalog() *catalog.Catalog
}
