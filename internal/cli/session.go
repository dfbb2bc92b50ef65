package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/taxwizard/internal/presentation/tui"
	"github.com/aretw0/taxwizard/internal/runtime"
	"github.com/aretw0/taxwizard/pkg/domain"
	"github.com/aretw0/taxwizard/pkg/ports"
	"github.com/aretw0/taxwizard/pkg/session"
)

const (
	helpText    = "Type an option number or value. b = back, r = restart, q = quit."
	blockedText = "b = revisit the TIN question, r = restart, q = quit."
)

// errBlockedInput rejects answers typed while the session is blocked.
var errBlockedInput = errors.New("registration is blocked: go back to change your TIN answer")

// Loop drives one session from line input until it completes or exits.
// A blocked session keeps reading so the applicant can go back or restart.
type Loop struct {
	Engine   ports.StatelessEngine
	Sessions *session.Manager
	Input    *LinePump
	Out      io.Writer
	Render   tui.Renderer
	JSON     bool
	Logger   *slog.Logger
}

// Run plays sessionID to completion, persisting every step.
// It returns the last state and errQuit when the applicant quits.
func (l *Loop) Run(ctx context.Context, sessionID string) (*domain.State, error) {
	state, created, err := l.Sessions.LoadOrStart(ctx, sessionID, l.Engine.Start)
	if err != nil {
		return nil, err
	}
	if !created {
		l.Logger.Info("Session Resumed", "session_id", sessionID, "status", state.Status)
		l.system("Resuming session '%s'.", sessionID)
	}

	for {
		view, err := l.Engine.Render(ctx, state)
		if err != nil {
			return state, err
		}
		blocked := state.Status == domain.StatusBlocked
		switch {
		case blocked:
			l.show(view, tui.OutcomeMarkdown(view))
			l.system(blockedText)
		case state.Terminal():
			l.show(view, tui.OutcomeMarkdown(view))
			return state, nil
		default:
			l.show(view, tui.QuestionMarkdown(view))
		}
		l.prompt()

		line, err := l.Input.Next(ctx)
		if err != nil {
			return state, err
		}

		cmd := parseCommand(line, view)
		switch {
		case cmd.kind == cmdQuit:
			return state, errQuit
		case cmd.kind == cmdHelp && blocked:
			l.system(blockedText)
			continue
		case cmd.kind == cmdHelp:
			l.system(helpText)
			continue
		case cmd.kind == cmdAnswer && blocked:
			l.problem(errBlockedInput)
			continue
		}

		next, err := l.Sessions.Apply(ctx, sessionID, func(current *domain.State) (*domain.State, error) {
			switch cmd.kind {
			case cmdBack:
				return l.Engine.Back(ctx, current)
			case cmdRestart:
				return l.Engine.Restart(ctx, current), nil
			default:
				return l.Engine.Submit(ctx, current, cmd.value)
			}
		})
		if err != nil {
			if errors.Is(err, domain.ErrEmptyAnswer) || errors.Is(err, domain.ErrInvalidOption) {
				l.problem(err)
				continue
			}
			return state, err
		}
		state = next
	}
}

func (l *Loop) show(view *runtime.View, markdown string) {
	if l.JSON {
		_ = json.NewEncoder(l.Out).Encode(view)
		return
	}
	out, err := l.Render(markdown)
	if err != nil {
		out = markdown
	}
	fmt.Fprint(l.Out, out)
}

func (l *Loop) prompt() {
	if !l.JSON {
		fmt.Fprint(l.Out, "> ")
	}
}

func (l *Loop) problem(err error) {
	if l.JSON {
		_ = json.NewEncoder(l.Out).Encode(map[string]string{"error": err.Error()})
		return
	}
	fmt.Fprintf(l.Out, "!!! %v\n", err)
}

func (l *Loop) system(format string, args ...any) {
	if l.JSON {
		return
	}
	fmt.Fprintf(l.Out, ">>> %s\n", fmt.Sprintf(format, args...))
}

// RunSession executes a single interactive session.
func RunSession(ctx context.Context, opts RunOptions) error {
	opts.defaults()
	logger := createLogger(opts.Debug)

	if !opts.JSON && IsTerminal(opts.Out) {
		tui.PrintBanner(opts.Out)
	}

	engine, err := createEngine(opts, logger)
	if err != nil {
		return err
	}

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = session.NewID()
	}

	loop := &Loop{
		Engine:   engine,
		Sessions: session.NewManager(setupPersistence(opts), session.WithLogger(logger)),
		Input:    NewLinePump(opts.In),
		Out:      opts.Out,
		Render:   chooseRenderer(opts),
		JSON:     opts.JSON,
		Logger:   logger,
	}

	state, runErr := loop.Run(sigCtx, sessionID)
	if sigCtx.Err() != nil && runErr == nil {
		runErr = sigCtx.Err()
	}
	logCompletion(opts.Out, state, runErr, opts.JSON, sigCtx.Signal())
	return handleExecutionError(runErr)
}

func chooseRenderer(opts RunOptions) tui.Renderer {
	if IsTerminal(opts.Out) {
		return tui.NewRenderer()
	}
	return tui.PlainRenderer
}
