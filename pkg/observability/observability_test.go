package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/taxwizard/internal/runtime"
	"github.com/aretw0/taxwizard/pkg/catalog"
	"github.com/aretw0/taxwizard/pkg/domain"
	"github.com/aretw0/taxwizard/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, hooks domain.LifecycleHooks, answers ...string) *domain.State {
	t.Helper()
	ctx := context.Background()
	e := runtime.NewEngine(catalog.Default(), runtime.WithLifecycleHooks(hooks))
	state := e.Start(ctx, "s1")
	for _, a := range answers {
		var err error
		state, err = e.Submit(ctx, state, a)
		require.NoError(t, err)
	}
	return state
}

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	run(t, m.Hooks(), "yes", "organization", "yes", "no", "yes")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Answers.WithLabelValues("applicant-type", "organization")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Outcomes.WithLabelValues("completed", "partnership-corporation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FormsRecommends.WithLabelValues(domain.FormOS01)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.FormsRecommends.WithLabelValues(domain.FormBR01)))

	run(t, m.Hooks(), "no")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Outcomes.WithLabelValues("blocked", "")))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *observability.Metrics
	assert.NotPanics(t, func() {
		m.ObserveStore("load", time.Now())
		m.ObserveSession(time.Now(), time.Now())
		run(t, m.Hooks(), "yes")
	})
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	run(t, observability.LoggingHooks(logger), "yes", "property-owner")

	out := buf.String()
	assert.Contains(t, out, "question=applicant-type")
	assert.Contains(t, out, "msg=complete")
	assert.Contains(t, out, "track=property-only")
}
