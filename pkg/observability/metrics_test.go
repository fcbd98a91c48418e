package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/dialectic/pkg/domain"
	"github.com/aretw0/dialectic/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	hooks := m.Hooks()
	ctx := context.Background()

	hooks.DialogueStarted(ctx, "calibration")
	hooks.DialogueEnded(ctx, "calibration", true)
	hooks.DialogueEnded(ctx, "calibration", false)
	hooks.InsightGained(ctx, 5, 25, "option:go")
	hooks.MomentumChanged(ctx, 1, 2, "option:go")
	hooks.KnowledgeDiscovered(ctx, "pdd", "option:go")
	hooks.MentorRelationshipChanged(ctx, "kapoor", 50, 53)
	hooks.StrategicAction(ctx, "reframe", "kapoor", "intro", true)
	hooks.StrategicAction(ctx, "boast", "kapoor", "intro", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DialoguesStarted.WithLabelValues("calibration")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DialoguesEnded.WithLabelValues("calibration", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DialoguesEnded.WithLabelValues("calibration", "false")))
	assert.Equal(t, 25.0, testutil.ToFloat64(m.Insight))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Momentum))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConceptsFound))
	assert.Equal(t, 53.0, testutil.ToFloat64(m.Relationships.WithLabelValues("kapoor")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StrategicActions.WithLabelValues("boast", "false")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.StrategicActions))
}

func TestMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestChain_FansOut(t *testing.T) {
	var order []string
	first := domain.LifecycleHooks{
		OnDialogueStarted: func(context.Context, *domain.DialogueEvent) { order = append(order, "first") },
	}
	second := domain.LifecycleHooks{
		OnDialogueStarted: func(context.Context, *domain.DialogueEvent) { order = append(order, "second") },
		OnInsightGained:   func(context.Context, *domain.ResourceEvent) { order = append(order, "insight") },
	}

	hooks := observability.Chain(first, domain.LifecycleHooks{}, second)
	hooks.DialogueStarted(context.Background(), "g")
	hooks.InsightGained(context.Background(), 1, 1, "s")
	hooks.MomentumChanged(context.Background(), 1, 1, "s")

	assert.Equal(t, []string{"first", "second", "insight"}, order)
	assert.Nil(t, hooks.OnMomentumChanged)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	hooks := observability.LogHooks(logger)
	hooks.StrategicAction(context.Background(), "synthesis", "quinn", "board", true)
	hooks.MentorRelationshipChanged(context.Background(), "quinn", 50, 48)

	out := buf.String()
	assert.Contains(t, out, `"msg":"strategic_action"`)
	assert.Contains(t, out, `"kind":"synthesis"`)
	assert.Contains(t, out, `"msg":"mentor_relationship_changed"`)
	assert.Contains(t, out, `"value":48`)
}
