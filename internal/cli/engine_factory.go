package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/taxwizard"
	"github.com/aretw0/taxwizard/pkg/observability"
)

// catalogCandidates are looked up in the working directory when no --catalog is given.
var catalogCandidates = []string{"catalog.yaml", "catalog.yml", "eligibility.yaml"}

// createEngine initializes an engine with standard CLI conventions.
func createEngine(opts RunOptions, logger *slog.Logger) (*taxwizard.Engine, error) {
	engineOpts := []taxwizard.Option{taxwizard.WithLogger(logger)}

	if opts.Debug {
		engineOpts = append(engineOpts, taxwizard.WithLifecycleHooks(observability.LoggingHooks(logger)))
	}

	if path := resolveCatalog(opts.CatalogPath, "."); path != "" {
		logger.Debug("Using catalog file", "path", path)
		engineOpts = append(engineOpts, taxwizard.WithCatalogFile(path))
	}

	engine, err := taxwizard.New(engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}

// resolveCatalog returns the explicit path, or the first conventional catalog in dir.
// An empty result selects the built-in catalog.
func resolveCatalog(explicit, dir string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range catalogCandidates {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
