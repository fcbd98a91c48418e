package tests

import (
	"errors"
	"testing"

	"github.com/aretw0/dialectic/pkg/domain"
	"github.com/aretw0/dialectic/pkg/ports"
)

// ContentRegistryContractTest is a reusable test suite that verifies if an adapter complies with ports.ContentRegistry.
// expected maps graph IDs to the start stage each graph must report.
func ContentRegistryContractTest(t *testing.T, registry ports.ContentRegistry, expected map[string]string) {
	t.Helper()

	t.Run("GetGraph_Success", func(t *testing.T) {
		for id, start := range expected {
			g, err := registry.GetGraph(id)
			if err != nil {
				t.Fatalf("unexpected error getting graph %s: %v", id, err)
			}
			if g.ID != id {
				t.Errorf("graph ID mismatch: got %q, want %q", g.ID, id)
			}
			if g.StartStageID != start {
				t.Errorf("start stage mismatch for %s: got %q, want %q", id, g.StartStageID, start)
			}
			if _, ok := g.Stage(g.StartStageID); !ok {
				t.Errorf("graph %s: start stage %q missing from stages", id, g.StartStageID)
			}
		}
	})

	t.Run("GetGraph_NotFound", func(t *testing.T) {
		_, err := registry.GetGraph("non-existent-graph")
		if !errors.Is(err, domain.ErrUnknownGraph) {
			t.Errorf("expected ErrUnknownGraph for non-existent graph, got %v", err)
		}
	})

	t.Run("ListGraphs", func(t *testing.T) {
		ids, err := registry.ListGraphs()
		if err != nil {
			t.Fatalf("unexpected error listing graphs: %v", err)
		}

		if len(ids) != len(expected) {
			t.Errorf("expected %d graphs, got %d", len(expected), len(ids))
		}

		lookup := make(map[string]bool)
		for _, id := range ids {
			lookup[id] = true
		}

		for id := range expected {
			if !lookup[id] {
				t.Errorf("graph %s missing from list", id)
			}
		}
	})
}
