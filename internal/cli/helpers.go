package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/taxwizard/internal/logging"
	"github.com/aretw0/taxwizard/pkg/adapters/file"
	"github.com/aretw0/taxwizard/pkg/adapters/memory"
	"github.com/aretw0/taxwizard/pkg/domain"
	"github.com/aretw0/taxwizard/pkg/ports"
	"golang.org/x/term"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// createLogger configures the application logger.
// In debug mode, it writes to Stderr (to separate from Stdout flow UI).
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// setupPersistence picks the state store: named sessions go to disk so they can be resumed.
func setupPersistence(opts RunOptions) ports.StateStore {
	if opts.Store != nil {
		return opts.Store
	}
	if opts.SessionID != "" {
		return file.New(opts.SessionDir)
	}
	return memory.NewStore()
}

// ResetSession clears the persisted session with the given ID.
func ResetSession(ctx context.Context, dir, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := file.New(dir).Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to reset session %q: %w", sessionID, err)
	}
	return nil
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, errQuit) ||
		errors.Is(err, io.EOF)
}

func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}

func logCompletion(w io.Writer, state *domain.State, err error, quiet bool, sig os.Signal) {
	if quiet || state == nil {
		return
	}
	if err == nil {
		printSystemMessage(w, "Session '%s' finished (%s).", state.SessionID, state.Status)
		return
	}
	if !isInterrupted(err) {
		return
	}
	switch {
	case sig == os.Interrupt:
		fmt.Fprintf(w, "[CTRL+C]\n")
		printSystemMessage(w, "Interrupted. Resume with --session %s.", state.SessionID)
	case sig != nil:
		fmt.Fprintln(w)
		printSystemMessage(w, "Terminated. Resume with --session %s.", state.SessionID)
	default:
		fmt.Fprintln(w)
		printSystemMessage(w, "Paused session '%s'.", state.SessionID)
	}
}
