package dsl

import (
	"fmt"

	"github.com/aretw0/dialectic/pkg/adapters/memory"
	"github.com/aretw0/dialectic/pkg/domain"
)

// Builder manages the graph construction.
type Builder struct {
	graph  domain.Graph
	stages map[string]*StageBuilder
}

// New creates a new graph builder.
func New(id string) *Builder {
	return &Builder{
		graph:  domain.Graph{ID: id, Stages: make(map[string]*domain.Stage)},
		stages: make(map[string]*StageBuilder),
	}
}

// Domain sets the knowledge domain of the graph.
func (b *Builder) Domain(d string) *Builder {
	b.graph.Domain = d
	return b
}

// Difficulty sets the authored difficulty.
func (b *Builder) Difficulty(n int) *Builder {
	b.graph.Difficulty = n
	return b
}

// Stage creates a new stage in the graph.
// If the stage already exists, it returns the existing builder.
func (b *Builder) Stage(id string) *StageBuilder {
	if sb, ok := b.stages[id]; ok {
		return sb
	}
	sb := &StageBuilder{stage: &domain.Stage{ID: id}, builder: b}
	b.graph.Stages[id] = sb.stage
	b.stages[id] = sb
	if b.graph.StartStageID == "" {
		b.graph.StartStageID = id
	}
	return sb
}

// Graph returns a validated copy of the graph.
func (b *Builder) Graph() (*domain.Graph, error) {
	g := b.graph
	g.Stages = make(map[string]*domain.Stage, len(b.graph.Stages))
	for id, s := range b.graph.Stages {
		g.Stages[id] = s.Clone()
	}
	g.Normalize()
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("graph %s: %w", g.ID, err)
	}
	return &g, nil
}

// Loader compiles the graph into a memory loader.
func (b *Builder) Loader() (*memory.Loader, error) {
	g, err := b.Graph()
	if err != nil {
		return nil, err
	}
	loader, err := memory.NewFromGraphs(g)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}
