package ledger

import (
	"context"
	"math"
	"sync"

	"github.com/aretw0/dialectic/pkg/domain"
)

// Resources holds insight and momentum.
// Insight never drops below zero and has no upper bound.
// Momentum is clamped to [0, domain.MaxMomentumLevel].
type Resources struct {
	mu       sync.RWMutex
	insight  int
	momentum int
	config
}

// NewResources creates an empty resource ledger.
func NewResources(opts ...Option) *Resources {
	return &Resources{config: newConfig(opts)}
}

// Insight returns the current insight.
func (r *Resources) Insight() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.insight
}

// Momentum returns the current momentum level.
func (r *Resources) Momentum() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.momentum
}

// UpdateInsight applies delta and returns the change actually applied.
func (r *Resources) UpdateInsight(ctx context.Context, delta int, source string) int {
	if delta == 0 {
		return 0
	}

	r.mu.Lock()
	prev := r.insight
	if delta > 0 && prev > math.MaxInt-delta {
		r.insight = math.MaxInt
	} else {
		r.insight = max(prev+delta, 0)
	}
	applied, value := r.insight-prev, r.insight
	r.mu.Unlock()

	if applied != delta {
		r.logger.Debug("insight clamped", "delta", delta, "applied", applied, "source", source)
	}
	if applied != 0 {
		r.hooks.InsightGained(ctx, applied, value, source)
	}
	return applied
}

// UpdateMomentum applies delta and returns the change actually applied.
// A delta that clamps to nothing is still reported, so a maxed streak stays observable.
func (r *Resources) UpdateMomentum(ctx context.Context, delta int, source string) int {
	if delta == 0 {
		return 0
	}

	r.mu.Lock()
	prev := r.momentum
	r.momentum = domain.Clamp(prev+delta, 0, domain.MaxMomentumLevel)
	applied, value := r.momentum-prev, r.momentum
	r.mu.Unlock()

	if applied != delta {
		r.logger.Debug("momentum clamped", "delta", delta, "applied", applied, "source", source)
	}
	r.hooks.MomentumChanged(ctx, applied, value, source)
	return applied
}

// ResetMomentum forces momentum to zero.
func (r *Resources) ResetMomentum(ctx context.Context, source string) {
	r.mu.Lock()
	prev := r.momentum
	r.momentum = 0
	r.mu.Unlock()

	r.hooks.MomentumChanged(ctx, -prev, 0, source)
}

// State returns the serialisable state of the ledger.
func (r *Resources) State() domain.ResourceState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return domain.ResourceState{Insight: r.insight, Momentum: r.momentum}
}

// Restore replaces the ledger state, clamping restored values.
func (r *Resources) Restore(s domain.ResourceState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insight = max(s.Insight, 0)
	r.momentum = domain.Clamp(s.Momentum, 0, domain.MaxMomentumLevel)
}
