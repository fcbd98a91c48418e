package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/dialectic/pkg/domain"
)

// Knowledge records discovered concepts and their mastery.
// Discovery has set semantics: discovering a concept twice is a no-op.
type Knowledge struct {
	mu         sync.RWMutex
	discovered map[string]bool
	mastery    map[string]int
	domains    map[string]string
	config
}

// NewKnowledge creates an empty knowledge ledger.
func NewKnowledge(opts ...Option) *Knowledge {
	return &Knowledge{
		discovered: make(map[string]bool),
		mastery:    make(map[string]int),
		domains:    make(map[string]string),
		config:     newConfig(opts),
	}
}

// DiscoverConcept marks conceptID as discovered.
// It returns true only the first time the concept is discovered.
func (k *Knowledge) DiscoverConcept(ctx context.Context, conceptID, source string) bool {
	if conceptID == "" {
		return false
	}

	k.mu.Lock()
	if k.discovered[conceptID] {
		k.mu.Unlock()
		return false
	}
	k.discovered[conceptID] = true
	k.mu.Unlock()

	k.logger.Debug("concept discovered", "concept_id", conceptID, "source", source)
	k.hooks.KnowledgeDiscovered(ctx, conceptID, source)
	return true
}

// UpdateMastery changes the mastery of conceptID, clamped to [0, domain.MaxMastery],
// and returns the new value. Gaining mastery in an unknown concept discovers it.
func (k *Knowledge) UpdateMastery(ctx context.Context, conceptID string, delta int) int {
	return k.gain(ctx, domain.KnowledgeGain{ConceptID: conceptID, Amount: delta}, "mastery:"+conceptID)
}

// Gain applies a knowledge gain, recording the concept's domain.
func (k *Knowledge) Gain(ctx context.Context, g domain.KnowledgeGain, source string) int {
	return k.gain(ctx, g, source)
}

func (k *Knowledge) gain(ctx context.Context, g domain.KnowledgeGain, source string) int {
	if g.ConceptID == "" {
		return 0
	}

	k.mu.Lock()
	value := domain.Clamp(k.mastery[g.ConceptID]+g.Amount, 0, domain.MaxMastery)
	k.mastery[g.ConceptID] = value
	if g.DomainID != "" {
		k.domains[g.ConceptID] = g.DomainID
	}
	k.mu.Unlock()

	if g.Amount > 0 {
		k.DiscoverConcept(ctx, g.ConceptID, source)
	}
	return value
}

// IsDiscovered reports whether conceptID has been discovered.
func (k *Knowledge) IsDiscovered(conceptID string) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.discovered[conceptID]
}

// IsStarActive reports whether the constellation star for starID is lit.
// A star is active once its concept has been discovered.
func (k *Knowledge) IsStarActive(starID string) bool {
	return k.IsDiscovered(starID)
}

// Mastery returns the mastery of conceptID.
func (k *Knowledge) Mastery(conceptID string) int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.mastery[conceptID]
}

// Concepts returns the discovered concepts in sorted order.
func (k *Knowledge) Concepts() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	ids := make([]string, 0, len(k.discovered))
	for id := range k.discovered {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// State returns the serialisable state of the ledger.
func (k *Knowledge) State() domain.KnowledgeState {
	k.mu.RLock()
	defer k.mu.RUnlock()

	s := domain.KnowledgeState{
		Mastery: make(map[string]int, len(k.mastery)),
		Domains: make(map[string]string, len(k.domains)),
	}
	for id := range k.discovered {
		s.Discovered = append(s.Discovered, id)
	}
	sort.Strings(s.Discovered)
	for id, v := range k.mastery {
		s.Mastery[id] = v
	}
	for id, d := range k.domains {
		s.Domains[id] = d
	}
	return s
}

// Restore replaces the ledger state.
func (k *Knowledge) Restore(s domain.KnowledgeState) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.discovered = make(map[string]bool, len(s.Discovered))
	for _, id := range s.Discovered {
		k.discovered[id] = true
	}
	k.mastery = make(map[string]int, len(s.Mastery))
	for id, v := range s.Mastery {
		k.mastery[id] = domain.Clamp(v, 0, domain.MaxMastery)
	}
	k.domains = make(map[string]string, len(s.Domains))
	for id, d := range s.Domains {
		k.domains[id] = d
	}
}
