package loam

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/aretw0/dialectic/pkg/domain"
	"github.com/aretw0/loam"
	"github.com/mitchellh/mapstructure"
)

// Loader adapts a Loam repository of markdown stages to ports.ContentRegistry.
// Each document is one stage; stages are grouped into graphs by their "graph"
// field or, when absent, by their parent directory.
type Loader struct {
	Repo *loam.TypedRepository[StageMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[StageMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only, strict Loam repository at dir and wraps it.
func Open(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[StageMetadata](repo)), nil
}

// GetGraph assembles the graph from its stage documents.
func (l *Loader) GetGraph(id string) (*domain.Graph, error) {
	graphs, err := l.load(context.Background())
	if err != nil {
		return nil, err
	}
	g, ok := graphs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownGraph, id)
	}
	g.Normalize()
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// ListGraphs lists the IDs of all graphs in the repository.
func (l *Loader) ListGraphs() ([]string, error) {
	graphs, err := l.load(context.Background())
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(graphs))
	for id := range graphs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (l *Loader) load(ctx context.Context) (map[string]*domain.Graph, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	graphs := make(map[string]*domain.Graph)
	seen := make(map[string]string)

	for _, doc := range docs {
		docPath := filepath.ToSlash(doc.ID)
		if ext := path.Ext(docPath); ext != ".md" && ext != "" {
			continue
		}
		meta := doc.Data

		graphID := meta.Graph
		if graphID == "" {
			graphID = path.Base(path.Dir(docPath))
		}
		if graphID == "" || graphID == "." {
			return nil, fmt.Errorf("stage %s: no graph declared and no parent directory", docPath)
		}

		stageID := meta.ID
		if stageID == "" {
			stageID = path.Base(docPath)
		}
		stageID = trimExtension(stageID)

		key := graphID + "/" + stageID
		if existing, ok := seen[key]; ok {
			return nil, fmt.Errorf("collision detected: stage '%s' is defined in both '%s' and '%s'", key, existing, docPath)
		}
		seen[key] = docPath

		g, ok := graphs[graphID]
		if !ok {
			g = &domain.Graph{ID: graphID, Stages: make(map[string]*domain.Stage)}
			graphs[graphID] = g
		}

		stage, err := buildStage(stageID, meta, doc.Content)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", docPath, err)
		}
		g.Stages[stageID] = stage

		if meta.Start {
			if g.StartStageID != "" {
				return nil, fmt.Errorf("graph %s: both %s and %s are marked as start", graphID, g.StartStageID, stageID)
			}
			g.StartStageID = stageID
			g.Domain = meta.Domain
			difficulty, err := decodeInt(meta.Difficulty)
			if err != nil {
				return nil, fmt.Errorf("stage %s: difficulty: %w", docPath, err)
			}
			g.Difficulty = difficulty
		}
	}

	return graphs, nil
}

func buildStage(id string, meta StageMetadata, content string) (*domain.Stage, error) {
	stage := &domain.Stage{
		ID:             id,
		SpeakerID:      meta.Speaker,
		Text:           strings.TrimSpace(content),
		TangentStageID: trimExtension(meta.Tangent),
		BoastStageID:   trimExtension(meta.Boast),
		IsConclusion:   meta.Conclusion,
	}

	for i, raw := range meta.Options {
		var opt domain.Option
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			DecodeHook:       approachHook,
			Result:           &opt,
		})
		if err != nil {
			return nil, err
		}
		if err := decoder.Decode(raw); err != nil {
			return nil, fmt.Errorf("option %d: %w", i, err)
		}
		opt.NextStageID = trimExtension(opt.NextStageID)
		stage.Options = append(stage.Options, opt)
	}

	if meta.To != "" {
		stage.Options = append(stage.Options, domain.Option{
			ID:          "continue",
			Text:        "Continue",
			NextStageID: trimExtension(meta.To),
		})
	}
	return stage, nil
}

func approachHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(domain.Approach("")) || from.Kind() != reflect.String {
		return data, nil
	}
	return domain.Approach(strings.ToLower(reflect.ValueOf(data).String())), nil
}

func decodeInt(v any) (int, error) {
	if v == nil {
		return 0, nil
	}
	var n int
	if err := mapstructure.WeakDecode(v, &n); err != nil {
		return 0, err
	}
	return n, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch reports the graph IDs whose stage documents changed.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.md")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- path.Base(path.Dir(filepath.ToSlash(evt.ID))):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
