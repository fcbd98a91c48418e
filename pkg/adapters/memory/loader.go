package memory

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/dialectic/internal/compiler"
	"github.com/aretw0/dialectic/pkg/domain"
)

// Loader implements ports.ContentRegistry using an in-memory map.
type Loader struct {
	mu     sync.RWMutex
	graphs map[string][]byte
	parser *compiler.Parser
}

// NewLoader creates a new Loader with the provided raw data (JSON strings keyed by graph ID).
func NewLoader(data map[string]string) *Loader {
	graphs := make(map[string][]byte, len(data))
	for k, v := range data {
		graphs[k] = []byte(v)
	}
	return &Loader{graphs: graphs, parser: compiler.NewParser()}
}

// NewFromGraphs creates a Loader from domain objects.
// This handles serialization automatically, improving DX for tests.
func NewFromGraphs(graphs ...*domain.Graph) (*Loader, error) {
	l := &Loader{graphs: make(map[string][]byte, len(graphs)), parser: compiler.NewParser()}
	for _, g := range graphs {
		if err := l.Add(g); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Add registers or replaces a graph.
func (l *Loader) Add(g *domain.Graph) error {
	if g == nil || g.ID == "" {
		return fmt.Errorf("graph missing ID")
	}
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal graph %s: %w", g.ID, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.graphs[g.ID] = data
	return nil
}

// GetGraph decodes a fresh copy of the graph on every call.
func (l *Loader) GetGraph(id string) (*domain.Graph, error) {
	l.mu.RLock()
	data, ok := l.graphs[id]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownGraph, id)
	}
	return l.parser.Parse(data, compiler.FormatJSON)
}

// ListGraphs returns all available graph IDs.
func (l *Loader) ListGraphs() ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	keys := make([]string, 0, len(l.graphs))
	for k := range l.graphs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
