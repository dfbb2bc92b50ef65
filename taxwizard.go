package taxwizard

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/taxwizard/internal/runtime"
	"github.com/aretw0/taxwizard/pkg/catalog"
	"github.com/aretw0/taxwizard/pkg/domain"
)

// View is the read model of a session returned by Render.
type View = runtime.View

// Engine is the high-level entry point for the questionnaire.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime     *runtime.Engine
	catalog     *catalog.Catalog
	catalogPath string
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithCatalog replaces the built-in eligibility catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithCatalogFile loads the catalog from a YAML file when the engine is built.
func WithCatalogFile(path string) Option {
	return func(e *Engine) {
		e.catalogPath = path
	}
}

// New initializes an Engine. Without catalog options it runs catalog.Default().
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.catalogPath != "" {
		c, err := catalog.LoadFile(eng.catalogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		eng.catalog = c
	}
	if eng.catalog == nil {
		eng.catalog = catalog.Default()
	}

	// Ensure logger is initialized (so we don't pass nil to runtime, which would overwrite its default)
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	eng.runtime = runtime.NewEngine(
		eng.catalog,
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	)
	return eng, nil
}

// Catalog returns the question catalog driving the engine.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Start creates the initial state for a session.
func (e *Engine) Start(ctx context.Context, sessionID string) *domain.State {
	return e.runtime.Start(ctx, sessionID)
}

// Render builds the view of state without changing it.
func (e *Engine) Render(ctx context.Context, state *domain.State) (*View, error) {
	return e.runtime.Render(ctx, state)
}

// Submit answers the current question and returns the next state.
func (e *Engine) Submit(ctx context.Context, state *domain.State, value string) (*domain.State, error) {
	return e.runtime.Submit(ctx, state, value)
}

// Back moves one question backward. The returned state is exited when the
// applicant backs out of the first question.
func (e *Engine) Back(ctx context.Context, state *domain.State) (*domain.State, error) {
	return e.runtime.Back(ctx, state)
}

// Restart returns an empty state for the same session.
func (e *Engine) Restart(ctx context.Context, state *domain.State) *domain.State {
	return e.runtime.Restart(ctx, state)
}

// Relevant returns the questions that currently apply to state.
func (e *Engine) Relevant(state *domain.State) []domain.Question {
	return e.runtime.Relevant(state)
}

// NewSession starts an in-process session owned by a single caller.
func (e *Engine) NewSession(ctx context.Context, sessionID string) *Session {
	return &Session{engine: e, state: e.Start(ctx, sessionID)}
}

// Resume wraps a previously persisted state.
func (e *Engine) Resume(state *domain.State) *Session {
	return &Session{engine: e, state: state.Snapshot()}
}
