package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/dialectic/internal/logging"
	"github.com/aretw0/dialectic/pkg/domain"
	"github.com/aretw0/dialectic/pkg/ports"
)

// Registry resolves graphs from a content source and owns mentor relationships.
type Registry struct {
	content ports.ContentRegistry
	logger  *slog.Logger
	hooks   domain.LifecycleHooks

	mu      sync.RWMutex
	graphs  map[string]*domain.Graph
	mentors map[string]*domain.Mentor
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger configures a logger for the registry.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithLifecycleHooks registers notification hooks for relationship changes.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Registry) {
		r.hooks = hooks
	}
}

// WithMentors seeds the mentor records from a directory.
func WithMentors(dir ports.MentorDirectory) Option {
	return func(r *Registry) {
		mentors, err := dir.ListMentors()
		if err != nil {
			r.logger.Warn("failed to list mentors", "err", err)
			return
		}
		for _, m := range mentors {
			r.addMentor(m)
		}
	}
}

// New creates a registry backed by content.
func New(content ports.ContentRegistry, opts ...Option) *Registry {
	r := &Registry{
		content: content,
		logger:  logging.NewNop(),
		graphs:  make(map[string]*domain.Graph),
		mentors: make(map[string]*domain.Mentor),
	}
	for _, opt := range opts {
		opt(r)
		if r.logger == nil {
			r.logger = logging.NewNop()
		}
	}
	return r
}

// Graph returns the graph with the given ID, loading it on first use.
// The returned graph is shared and must be treated as read-only.
func (r *Registry) Graph(id string) (*domain.Graph, error) {
	r.mu.RLock()
	g, ok := r.graphs[id]
	r.mu.RUnlock()
	if ok {
		return g, nil
	}

	if r.content == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownGraph, id)
	}
	g, err := r.content.GetGraph(id)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownGraph) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUnknownGraph, id, err)
	}
	g.Normalize()
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("graph %s is invalid: %w", id, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.graphs[id]; ok {
		return cached, nil
	}
	r.graphs[id] = g
	return g, nil
}

// Graphs lists the IDs of all graphs known to the content source.
func (r *Registry) Graphs() ([]string, error) {
	if r.content == nil {
		return nil, nil
	}
	ids, err := r.content.ListGraphs()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

// Invalidate drops every cached graph so the next lookup reloads from source.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.graphs = make(map[string]*domain.Graph)
}

// AddMentor registers or replaces a mentor record.
func (r *Registry) AddMentor(m domain.Mentor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addMentor(m)
}

func (r *Registry) addMentor(m domain.Mentor) {
	m = m.Clone()
	m.Relationship = domain.Clamp(m.Relationship, 0, domain.MaxRelationship)
	r.mentors[m.ID] = &m
}

// Mentor returns a copy of the mentor record.
func (r *Registry) Mentor(id string) (domain.Mentor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.mentors[id]
	if !ok {
		return domain.Mentor{}, fmt.Errorf("%w: %s", domain.ErrUnknownMentor, id)
	}
	return m.Clone(), nil
}

// Mentors returns copies of all mentor records ordered by ID.
func (r *Registry) Mentors() []domain.Mentor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Mentor, 0, len(r.mentors))
	for _, m := range r.mentors {
		out = append(out, m.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UpdateMentorRelationship shifts a mentor's relationship by delta, clamped to [0, 100].
// It returns the new value.
func (r *Registry) UpdateMentorRelationship(ctx context.Context, mentorID string, delta int) (int, error) {
	r.mu.Lock()
	m, ok := r.mentors[mentorID]
	if !ok {
		r.mu.Unlock()
		r.logger.Warn("relationship change for unknown mentor", "mentor", mentorID, "delta", delta)
		return 0, fmt.Errorf("%w: %s", domain.ErrUnknownMentor, mentorID)
	}
	prev := m.Relationship
	m.Relationship = domain.Clamp(prev+delta, 0, domain.MaxRelationship)
	next := m.Relationship
	r.mu.Unlock()

	if next != prev+delta {
		r.logger.Debug("relationship clamped", "mentor", mentorID, "requested", prev+delta, "value", next)
	}
	if delta != 0 {
		r.hooks.MentorRelationshipChanged(ctx, mentorID, prev, next)
	}
	return next, nil
}

// Relationships returns the relationship value of every mentor.
func (r *Registry) Relationships() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int, len(r.mentors))
	for id, m := range r.mentors {
		out[id] = m.Relationship
	}
	return out
}

// RestoreRelationships overwrites relationship values for known mentors.
// Unknown IDs get a bare record so saved progress is never dropped.
func (r *Registry) RestoreRelationships(values map[string]int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, v := range values {
		m, ok := r.mentors[id]
		if !ok {
			m = &domain.Mentor{ID: id, Name: id}
			r.mentors[id] = m
		}
		m.Relationship = domain.Clamp(v, 0, domain.MaxRelationship)
	}
}
