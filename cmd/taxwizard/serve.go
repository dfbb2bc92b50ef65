package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/aretw0/taxwizard/pkg/adapters/http"
	"github.com/aretw0/taxwizard/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 5 * time.Second
	purgeInterval   = 10 * time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves questionnaire sessions as a JSON API with SSE updates and Prometheus metrics.
Backends are configured through TAXWIZARD_* environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		h, err := newHost(ctx, cfg, observability.NewMetrics(reg))
		if err != nil {
			return err
		}
		defer h.Close()

		srv := &http.Server{
			Addr: cfg.Addr,
			Handler: httpadapter.NewHandler(h.engine, h.sessions,
				httpadapter.WithLogger(h.logger),
				httpadapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
			),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			h.logger.Info("Starting taxwizard server", "addr", srv.Addr, "store", cfg.Store)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			h.logger.Info("Start shutdown...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				h.logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				return srv.Close()
			}
			h.logger.Info("taxwizard server stopped gracefully")
			return nil
		})
		if h.purger != nil {
			g.Go(func() error {
				return purgeLoop(ctx, h)
			})
		}
		return g.Wait()
	},
}

func purgeLoop(ctx context.Context, h *host) error {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := h.purger.PurgeExpired(ctx)
			if err != nil {
				h.logger.Warn("purge expired sessions failed", "err", err)
				continue
			}
			if n > 0 {
				h.logger.Info("purged expired sessions", "count", n)
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides TAXWIZARD_ADDR)")
	serveCmd.Flags().String("store", "", "Session store: memory, file, redis or postgres (overrides TAXWIZARD_STORE)")
}
