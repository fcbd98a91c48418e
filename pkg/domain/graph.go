package domain

import (
	"errors"
	"fmt"
	"sort"
)

// Graph is an authored conversation: a set of stages reachable from a start stage.
type Graph struct {
	ID           string            `json:"id" yaml:"id" mapstructure:"id"`
	StartStageID string            `json:"start_stage_id" yaml:"start_stage_id" mapstructure:"start_stage_id"`
	Stages       map[string]*Stage `json:"stages" yaml:"stages" mapstructure:"stages"`
	Domain       string            `json:"domain,omitempty" yaml:"domain,omitempty" mapstructure:"domain"`
	Difficulty   int               `json:"difficulty,omitempty" yaml:"difficulty,omitempty" mapstructure:"difficulty"`
}

// Stage returns the stage with the given ID.
func (g *Graph) Stage(id string) (*Stage, bool) {
	if g == nil || id == "" {
		return nil, false
	}
	s, ok := g.Stages[id]
	return s, ok && s != nil
}

// StageIDs returns the stage IDs in deterministic order.
func (g *Graph) StageIDs() []string {
	ids := make([]string, 0, len(g.Stages))
	for id := range g.Stages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Normalize fills stage IDs omitted by authors from their map keys and
// defaults the difficulty to 1.
func (g *Graph) Normalize() {
	for key, s := range g.Stages {
		if s != nil && s.ID == "" {
			s.ID = key
		}
	}
	if g.Difficulty == 0 {
		g.Difficulty = 1
	}
}

// Validate checks the structural invariants of the graph.
// Referential integrity of transitions is an authoring concern checked by the validator.
func (g *Graph) Validate() error {
	var errs []error
	if g.ID == "" {
		errs = append(errs, fmt.Errorf("graph missing ID"))
	}
	if _, ok := g.Stage(g.StartStageID); !ok {
		errs = append(errs, fmt.Errorf("graph %s: start stage %q not found", g.ID, g.StartStageID))
	}
	if g.Difficulty < 1 || g.Difficulty > 3 {
		errs = append(errs, fmt.Errorf("graph %s: difficulty %d out of range 1-3", g.ID, g.Difficulty))
	}
	for _, key := range g.StageIDs() {
		s := g.Stages[key]
		if s == nil {
			errs = append(errs, fmt.Errorf("graph %s: stage %q is empty", g.ID, key))
			continue
		}
		if s.ID != key {
			errs = append(errs, fmt.Errorf("graph %s: stage key %q does not match ID %q", g.ID, key, s.ID))
		}
		seen := make(map[string]bool, len(s.Options))
		for _, o := range s.Options {
			if err := o.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("graph %s: stage %s: %w", g.ID, key, err))
			}
			if seen[o.ID] {
				errs = append(errs, fmt.Errorf("graph %s: stage %s: duplicate option %q", g.ID, key, o.ID))
			}
			seen[o.ID] = true
		}
	}
	return errors.Join(errs...)
}
