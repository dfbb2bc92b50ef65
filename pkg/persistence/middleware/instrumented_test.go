package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/taxwizard/pkg/adapters/memory"
	"github.com/aretw0/taxwizard/pkg/domain"
	"github.com/aretw0/taxwizard/pkg/observability"
	"github.com/aretw0/taxwizard/pkg/persistence/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddleware(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	store := middleware.Chain(memory.NewStore(), middleware.NewMetricsMiddleware(m))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", domain.NewState("s1")))
	_, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	_, err = store.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	assert.Equal(t, 2, testutil.CollectAndCount(m.StoreDuration))
}

func TestChain_Order(t *testing.T) {
	inner := memory.NewStore()
	key := make([]byte, 32)
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	require.NoError(t, err)

	m := observability.NewMetrics(prometheus.NewRegistry())
	store := middleware.Chain(inner, middleware.NewMetricsMiddleware(m), enc)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "s1", domain.NewState("s1")))

	raw, err := inner.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Contains(t, raw.Answers, "__encrypted__")
}
