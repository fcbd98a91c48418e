package ledger_test

import (
	"context"
	"math"
	"testing"

	"github.com/aretw0/dialectic/pkg/domain"
	"github.com/aretw0/dialectic/pkg/ledger"
	"github.com/stretchr/testify/assert"
)

func TestResources_Insight(t *testing.T) {
	ctx := context.Background()
	var events []domain.ResourceEvent
	r := ledger.NewResources(ledger.WithLifecycleHooks(domain.LifecycleHooks{
		OnInsightGained: func(_ context.Context, e *domain.ResourceEvent) {
			events = append(events, *e)
		},
	}))

	assert.Equal(t, 5, r.UpdateInsight(ctx, 5, "option:go"))
	assert.Equal(t, 5, r.Insight())

	// Floors at zero
	assert.Equal(t, -5, r.UpdateInsight(ctx, -20, "penalty"))
	assert.Equal(t, 0, r.Insight())

	// Already at floor: nothing applied, nothing emitted
	assert.Equal(t, 0, r.UpdateInsight(ctx, -1, "penalty"))

	// No upper bound
	r.UpdateInsight(ctx, 1_000_000, "jackpot")
	assert.Equal(t, 1_000_000, r.Insight())

	assert.Len(t, events, 3)
	assert.Equal(t, "option:go", events[0].Source)
	assert.Equal(t, 5, events[0].Change)
	assert.Equal(t, -5, events[1].Change)
}

func TestResources_InsightSaturates(t *testing.T) {
	ctx := context.Background()
	r := ledger.NewResources()
	r.UpdateInsight(ctx, 10, "option:go")

	applied := r.UpdateInsight(ctx, math.MaxInt, "jackpot")

	assert.Equal(t, math.MaxInt, r.Insight())
	assert.Equal(t, math.MaxInt-10, applied)
	assert.Equal(t, 0, r.UpdateInsight(ctx, 1, "jackpot"))
	assert.Equal(t, math.MaxInt, r.Insight())
}

func TestResources_Momentum(t *testing.T) {
	ctx := context.Background()

	t.Run("Clamped At Max", func(t *testing.T) {
		r := ledger.NewResources()
		r.UpdateMomentum(ctx, domain.MaxMomentumLevel, "streak")
		applied := r.UpdateMomentum(ctx, 3, "streak")

		assert.Equal(t, 0, applied)
		assert.Equal(t, domain.MaxMomentumLevel, r.Momentum())
	})

	t.Run("Clamped At Zero", func(t *testing.T) {
		r := ledger.NewResources()
		r.UpdateMomentum(ctx, -2, "miss")
		assert.Equal(t, 0, r.Momentum())
	})

	t.Run("Reset", func(t *testing.T) {
		var last domain.ResourceEvent
		r := ledger.NewResources(ledger.WithLifecycleHooks(domain.LifecycleHooks{
			OnMomentumChanged: func(_ context.Context, e *domain.ResourceEvent) { last = *e },
		}))
		r.UpdateMomentum(ctx, 2, "streak")
		r.ResetMomentum(ctx, "overconfident")

		assert.Equal(t, 0, r.Momentum())
		assert.Equal(t, -2, last.Change)
		assert.Equal(t, "overconfident", last.Source)
	})
}

func TestResources_Restore(t *testing.T) {
	r := ledger.NewResources()
	r.Restore(domain.ResourceState{Insight: -3, Momentum: 9})

	assert.Equal(t, domain.ResourceState{Insight: 0, Momentum: domain.MaxMomentumLevel}, r.State())
}
