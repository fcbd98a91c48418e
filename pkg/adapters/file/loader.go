package file

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/dialectic/internal/compiler"
	"github.com/aretw0/dialectic/pkg/domain"
	"gopkg.in/yaml.v3"
)

// MentorsFile is the name of the optional mentor directory inside a content dir.
const MentorsFile = "mentors.yaml"

// Loader implements ports.ContentRegistry and ports.MentorDirectory over a
// directory tree of YAML or JSON graph files.
type Loader struct {
	root   string
	parser *compiler.Parser

	mu      sync.RWMutex
	graphs  map[string]*domain.Graph
	sources map[string]string
	mentors map[string]domain.Mentor
}

// NewLoader scans root and parses every graph file in it.
func NewLoader(root string) (*Loader, error) {
	l := &Loader{root: root, parser: compiler.NewParser()}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload rescans the directory. On error the previous content is kept.
func (l *Loader) Reload() error {
	graphs := make(map[string]*domain.Graph)
	sources := make(map[string]string)
	mentors := make(map[string]domain.Mentor)

	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != l.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == MentorsFile {
			return loadMentors(path, mentors)
		}
		if _, ok := compiler.FormatFromPath(path); !ok {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		g, err := l.parser.ParseFile(path, data)
		if err != nil {
			return err
		}
		if prev, dup := sources[g.ID]; dup {
			return fmt.Errorf("graph %s defined twice: %s and %s", g.ID, prev, path)
		}
		graphs[g.ID] = g
		sources[g.ID] = path
		return nil
	})
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.graphs, l.sources, l.mentors = graphs, sources, mentors
	return nil
}

func loadMentors(path string, into map[string]domain.Mentor) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	var doc struct {
		Mentors []domain.Mentor `yaml:"mentors"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for _, m := range doc.Mentors {
		if m.ID == "" {
			return fmt.Errorf("%s: mentor missing ID", path)
		}
		into[m.ID] = m
	}
	return nil
}

// GetGraph returns a fresh copy of the graph.
func (l *Loader) GetGraph(id string) (*domain.Graph, error) {
	l.mu.RLock()
	g, ok := l.graphs[id]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownGraph, id)
	}
	return cloneGraph(g), nil
}

// Source returns the file a graph was loaded from.
func (l *Loader) Source(id string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	path, ok := l.sources[id]
	return path, ok
}

// ListGraphs returns all graph IDs in sorted order.
func (l *Loader) ListGraphs() ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.graphs))
	for id := range l.graphs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// GetMentor returns the mentor declared in mentors.yaml.
func (l *Loader) GetMentor(id string) (domain.Mentor, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	m, ok := l.mentors[id]
	if !ok {
		return domain.Mentor{}, fmt.Errorf("%w: %s", domain.ErrUnknownMentor, id)
	}
	return m.Clone(), nil
}

// ListMentors returns the declared mentors ordered by ID.
func (l *Loader) ListMentors() ([]domain.Mentor, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Mentor, 0, len(l.mentors))
	for _, m := range l.mentors {
		out = append(out, m.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func cloneGraph(g *domain.Graph) *domain.Graph {
	next := *g
	next.Stages = make(map[string]*domain.Stage, len(g.Stages))
	for id, s := range g.Stages {
		next.Stages[id] = s.Clone()
	}
	return &next
}
