package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/taxwizard"
	"github.com/aretw0/taxwizard/internal/config"
	"github.com/aretw0/taxwizard/internal/logging"
	"github.com/aretw0/taxwizard/pkg/adapters/file"
	"github.com/aretw0/taxwizard/pkg/adapters/kafka"
	"github.com/aretw0/taxwizard/pkg/adapters/memory"
	"github.com/aretw0/taxwizard/pkg/adapters/postgres"
	redisstore "github.com/aretw0/taxwizard/pkg/adapters/redis"
	"github.com/aretw0/taxwizard/pkg/observability"
	"github.com/aretw0/taxwizard/pkg/persistence/middleware"
	"github.com/aretw0/taxwizard/pkg/ports"
	"github.com/aretw0/taxwizard/pkg/session"
	"github.com/spf13/cobra"
)

// host bundles everything a long-running command (serve, mcp) needs.
type host struct {
	cfg      config.Server
	logger   *slog.Logger
	engine   *taxwizard.Engine
	sessions *session.Manager
	metrics  *observability.Metrics
	purger   purger
	closers  []func() error
}

// purger deletes expired sessions in backends that do not expire them on their own.
type purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Close releases backends in reverse order of creation.
func (h *host) Close() error {
	var errs []error
	for i := len(h.closers) - 1; i >= 0; i-- {
		errs = append(errs, h.closers[i]())
	}
	return errors.Join(errs...)
}

// loadConfig reads the environment and applies the persistent flags on top.
func loadConfig(cmd *cobra.Command) (config.Server, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return cfg, err
	}
	if v, _ := cmd.Flags().GetString("catalog"); v != "" {
		cfg.Catalog = v
	}
	if v, _ := cmd.Flags().GetString("session-dir"); v != "" {
		cfg.SessionDir = v
	}
	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.Store = v
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.LogLevel = slog.LevelDebug
	}
	return cfg, cfg.Validate()
}

// newHost wires storage, locking, publishing and metrics around the engine.
func newHost(ctx context.Context, cfg config.Server, metrics *observability.Metrics) (*host, error) {
	h := &host{
		cfg:     cfg,
		logger:  logging.NewWithFormat(cfg.LogFormat, cfg.LogLevel, os.Stderr),
		metrics: metrics,
	}

	store, locker, err := h.buildStore(ctx)
	if err != nil {
		_ = h.Close()
		return nil, err
	}

	hooks := metrics.Hooks().Merge(observability.LoggingHooks(h.logger))
	managerOpts := []session.Option{session.WithLogger(h.logger)}
	if len(cfg.KafkaBrokers) > 0 {
		pub, err := kafka.New(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			_ = h.Close()
			return nil, err
		}
		h.closers = append(h.closers, func() error { pub.Close(); return nil })
		managerOpts = append(managerOpts, session.WithPublisher(pub))
		h.logger.Info("publishing routing outcomes", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	opts := []taxwizard.Option{
		taxwizard.WithLogger(h.logger),
		taxwizard.WithLifecycleHooks(hooks),
	}
	if cfg.Catalog != "" {
		opts = append(opts, taxwizard.WithCatalogFile(cfg.Catalog))
	}
	h.engine, err = taxwizard.New(opts...)
	if err != nil {
		_ = h.Close()
		return nil, err
	}

	if locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(locker))
	}
	h.sessions = session.NewManager(store, managerOpts...)
	return h, nil
}

// buildStore opens the configured backend and wraps it with the store middleware chain.
func (h *host) buildStore(ctx context.Context) (ports.StateStore, ports.DistributedLocker, error) {
	var (
		store  ports.StateStore
		locker ports.DistributedLocker
	)

	switch h.cfg.Store {
	case config.StoreFile:
		store = file.New(h.cfg.SessionDir)
	case config.StoreRedis:
		rs := redisstore.New(h.cfg.RedisAddr, h.cfg.RedisPassword, h.cfg.RedisDB, redisstore.WithTTL(h.cfg.SessionTTL))
		h.closers = append(h.closers, rs.Close)
		if err := rs.Ping(ctx); err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		store = rs
		locker = redisstore.NewLocker(rs.Client(), redisstore.DefaultPrefix)
	case config.StorePostgres:
		db, err := postgres.Open(ctx, h.cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		h.closers = append(h.closers, db.Close)
		ps := postgres.New(db, postgres.WithTTL(h.cfg.SessionTTL))
		if err := ps.Migrate(ctx); err != nil {
			return nil, nil, err
		}
		store = ps
		locker = postgres.NewLocker(db)
		if h.cfg.SessionTTL > 0 {
			h.purger = ps
		}
	default:
		store = memory.NewStore()
	}

	mws := []middleware.Middleware{middleware.NewMetricsMiddleware(h.metrics)}
	if h.cfg.EncryptionKey != "" {
		key, err := middleware.ParseKey(h.cfg.EncryptionKey)
		if err != nil {
			return nil, nil, fmt.Errorf("encryption key: %w", err)
		}
		encCfg := middleware.EncryptionConfig{ActiveKey: key}
		for i, encoded := range h.cfg.EncryptionFallbackKeys {
			fallback, err := middleware.ParseKey(encoded)
			if err != nil {
				return nil, nil, fmt.Errorf("encryption fallback key %d: %w", i, err)
			}
			encCfg.FallbackKeys = append(encCfg.FallbackKeys, fallback)
		}
		enc, err := middleware.NewEncryptionMiddleware(encCfg)
		if err != nil {
			return nil, nil, err
		}
		mws = append(mws, enc)
	}

	h.logger.Info("session store ready", "store", h.cfg.Store, "encrypted", h.cfg.EncryptionKey != "", "fallback_keys", len(h.cfg.EncryptionFallbackKeys), "distributed_lock", locker != nil)
	return middleware.Chain(store, mws...), locker, nil
}
