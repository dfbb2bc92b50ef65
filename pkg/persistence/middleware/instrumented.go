package middleware

import (
	"context"
	"time"

	"github.com/aretw0/taxwizard/pkg/domain"
	"github.com/aretw0/taxwizard/pkg/observability"
	"github.com/aretw0/taxwizard/pkg/ports"
)

type metricsMiddleware struct {
	next    ports.StateStore
	metrics *observability.Metrics
}

// NewMetricsMiddleware records the duration of every store call.
func NewMetricsMiddleware(m *observability.Metrics) Middleware {
	return func(next ports.StateStore) ports.StateStore {
		return &metricsMiddleware{next: next, metrics: m}
	}
}

func (m *metricsMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	defer m.metrics.ObserveStore("save", time.Now())
	return m.next.Save(ctx, sessionID, state)
}

func (m *metricsMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	defer m.metrics.ObserveStore("load", time.Now())
	return m.next.Load(ctx, sessionID)
}

func (m *metricsMiddleware) Delete(ctx context.Context, sessionID string) error {
	defer m.metrics.ObserveStore("delete", time.Now())
	return m.next.Delete(ctx, sessionID)
}

func (m *metricsMiddleware) List(ctx context.Context) ([]string, error) {
	defer m.metrics.ObserveStore("list", time.Now())
	return m.next.List(ctx)
}
