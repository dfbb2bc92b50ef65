package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/taxwizard/internal/presentation/tui"
	"github.com/aretw0/taxwizard/pkg/adapters/file"
	"github.com/aretw0/taxwizard/pkg/session"
	"github.com/fsnotify/fsnotify"
)

const (
	watchSessionID = "watch-dev"
	reloadDebounce = 100 * time.Millisecond
)

// RunWatch runs the questionnaire against a catalog file, reloading it on change.
// The session survives reloads: answers that no longer apply are pruned on the next step.
func RunWatch(ctx context.Context, opts RunOptions) error {
	opts.defaults()
	logger := createLogger(opts.Debug)
	tui.PrintBanner(opts.Out)

	if opts.SessionID == "" {
		opts.SessionID = watchSessionID
	}
	if opts.Fresh {
		if err := ResetSession(ctx, opts.SessionDir, opts.SessionID); err != nil {
			return err
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()
	// Editors replace files on save, so watch the directory rather than the file.
	if err := watcher.Add(filepath.Dir(opts.CatalogPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", opts.CatalogPath, err)
	}

	logger.Info("Starting Watcher", "path", opts.CatalogPath, "session_id", opts.SessionID)
	printSystemMessage(opts.Out, "Watching '%s' (session '%s').", opts.CatalogPath, opts.SessionID)

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	// One pump for all iterations avoids competing stdin readers.
	pump := NewLinePump(opts.In)
	sessions := session.NewManager(file.New(opts.SessionDir), session.WithLogger(logger))

	for {
		reload, err := runWatchIteration(sigCtx, opts, watcher, pump, sessions, logger)
		if err != nil || !reload {
			return handleExecutionError(err)
		}
		logger.Info("Watcher restarting")
	}
}

func runWatchIteration(parent *SignalContext, opts RunOptions, watcher *fsnotify.Watcher, pump *LinePump, sessions *session.Manager, logger *slog.Logger) (bool, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	engine, err := createEngine(opts, logger)
	if err != nil {
		printSystemMessage(opts.Out, "Catalog invalid: %v", err)
		printSystemMessage(opts.Out, "Waiting for changes...")
		return waitForChange(parent, watcher, opts.CatalogPath, logger)
	}

	loop := &Loop{
		Engine:   engine,
		Sessions: sessions,
		Input:    pump,
		Out:      opts.Out,
		Render:   chooseRenderer(opts),
		Logger:   logger,
	}

	type result struct{ err error }
	done := make(chan result, 1)
	go func() {
		_, err := loop.Run(ctx, opts.SessionID)
		done <- result{err}
	}()

	changed := make(chan struct{}, 1)
	go func() {
		if ok, _ := waitForChange(ctx, watcher, opts.CatalogPath, logger); ok {
			changed <- struct{}{}
		}
	}()

	select {
	case <-parent.Done():
		cancel()
		<-done
		return false, parent.Err()
	case <-changed:
		fmt.Fprintln(opts.Out)
		printSystemMessage(opts.Out, "Change detected in '%s'.", opts.CatalogPath)
		cancel()
		<-done
		return true, nil
	case res := <-done:
		if res.err != nil && !errors.Is(res.err, context.Canceled) {
			return false, res.err
		}
		printSystemMessage(opts.Out, "Waiting for changes...")
		select {
		case <-parent.Done():
			return false, parent.Err()
		case <-changed:
			return true, nil
		}
	}
}

// waitForChange blocks until the catalog file is written, created or renamed.
func waitForChange(ctx context.Context, watcher *fsnotify.Watcher, path string, logger *slog.Logger) (bool, error) {
	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case err, ok := <-watcher.Errors:
			if !ok {
				return false, nil
			}
			logger.Warn("Watcher error", "err", err)
		case event, ok := <-watcher.Events:
			if !ok {
				return false, nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				logger.Debug("Catalog changed", "event", event.Op.String())
				// Let the editor finish writing.
				time.Sleep(reloadDebounce)
				return true, nil
			}
		}
	}
}
