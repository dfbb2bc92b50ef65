package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/taxwizard/pkg/ports"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	CatalogPath string
	SessionID   string
	SessionDir  string
	Fresh       bool
	Watch       bool
	JSON        bool
	Debug       bool

	// Store overrides the persistence chosen from SessionID/SessionDir.
	Store ports.StateStore

	In  io.Reader
	Out io.Writer
}

func (o *RunOptions) defaults() {
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
}

// Execute handles the 'run' command logic, dispatching to Session or Watch mode.
func Execute(ctx context.Context, opts RunOptions) error {
	opts.defaults()

	if opts.Watch {
		if opts.CatalogPath == "" {
			return fmt.Errorf("--watch requires --catalog")
		}
		if opts.JSON {
			return fmt.Errorf("--watch and --json cannot be used together")
		}
		return RunWatch(ctx, opts)
	}

	if opts.Fresh {
		if err := ResetSession(ctx, opts.SessionDir, opts.SessionID); err != nil {
			return err
		}
	}

	return RunSession(ctx, opts)
}
