package dialectic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/dialectic/internal/logging"
	"github.com/aretw0/dialectic/internal/runtime"
	"github.com/aretw0/dialectic/internal/validator"
	"github.com/aretw0/dialectic/pkg/adapters/file"
	loamAdapter "github.com/aretw0/dialectic/pkg/adapters/loam"
	"github.com/aretw0/dialectic/pkg/adapters/memory"
	"github.com/aretw0/dialectic/pkg/domain"
	"github.com/aretw0/dialectic/pkg/ports"
	"github.com/aretw0/dialectic/pkg/registry"
	"github.com/aretw0/dialectic/pkg/strategy"
)

// Version is the library version, overridden at link time for releases.
var Version = "0.1.0-dev"

// ErrWatchUnsupported is returned by Watch when the content source cannot report changes.
var ErrWatchUnsupported = errors.New("content source does not support watching")

// Watchable is implemented by content sources that report changed graph IDs.
type Watchable interface {
	Watch(ctx context.Context) (<-chan string, error)
}

// Reloadable is implemented by content sources that can rescan their backing store.
type Reloadable interface {
	Reload() error
}

// Engine is the high-level entry point for the Dialectic library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime  *runtime.Engine
	registry *registry.Registry
	content  ports.ContentRegistry
	mentors  ports.MentorDirectory
	handlers *strategy.Handlers
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	markdown bool
	Name     string
}

var _ ports.DialogueEngine = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithContentRegistry injects a custom content source, bypassing the default directory loader.
func WithContentRegistry(c ports.ContentRegistry) Option {
	return func(e *Engine) {
		e.content = c
	}
}

// WithMentorDirectory injects the mentor records.
// By default mentors come from the content source when it provides them,
// else from the built-in cast.
func WithMentorDirectory(d ports.MentorDirectory) Option {
	return func(e *Engine) {
		e.mentors = d
	}
}

// WithHandlers replaces the strategic action handlers.
func WithHandlers(h strategy.Handlers) Option {
	return func(e *Engine) {
		e.handlers = &h
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMarkdown reads the content directory as markdown stage documents instead of YAML/JSON graphs.
func WithMarkdown() Option {
	return func(e *Engine) {
		e.markdown = true
	}
}

// New initializes a new Dialectic Engine.
// By default, it loads YAML/JSON graphs from contentDir.
// If WithContentRegistry is provided, contentDir can be empty and is only used as a label.
func New(contentDir string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if contentDir != "" {
		eng.Name = filepath.Base(contentDir)
	}

	if eng.content == nil {
		if contentDir == "" {
			return nil, fmt.Errorf("contentDir is required when no custom content registry is provided")
		}
		content, err := openContent(contentDir, eng.markdown)
		if err != nil {
			return nil, err
		}
		eng.content = content
	}

	if eng.mentors == nil {
		if dir, ok := eng.content.(ports.MentorDirectory); ok {
			if listed, err := dir.ListMentors(); err == nil && len(listed) > 0 {
				eng.mentors = dir
			}
		}
	}
	if eng.mentors == nil {
		eng.mentors = memory.DefaultMentors()
	}

	if eng.Name != "" {
		eng.logger = eng.logger.With("content", eng.Name)
	}

	notifier := runtime.NewNotifier(eng.hooks)
	eng.registry = registry.New(eng.content,
		registry.WithLogger(eng.logger),
		registry.WithLifecycleHooks(notifier.Hooks()),
		registry.WithMentors(eng.mentors),
	)

	runtimeOpts := []runtime.Option{
		runtime.WithLogger(eng.logger),
		runtime.WithNotifier(notifier),
	}
	if eng.handlers != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithHandlers(*eng.handlers))
	}
	eng.runtime = runtime.NewEngine(eng.registry, runtimeOpts...)

	return eng, nil
}

func openContent(dir string, markdown bool) (ports.ContentRegistry, error) {
	if markdown {
		loader, err := loamAdapter.Open(dir)
		if err != nil {
			return nil, err
		}
		return loader, nil
	}
	loader, err := file.NewLoader(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load content from %s: %w", dir, err)
	}
	return loader, nil
}

// StartDialogue opens a session on the start stage of graphID.
func (e *Engine) StartDialogue(ctx context.Context, graphID string) error {
	return e.runtime.StartDialogue(ctx, graphID)
}

// EndDialogue forcibly returns to idle.
func (e *Engine) EndDialogue(ctx context.Context) error {
	return e.runtime.EndDialogue(ctx)
}

// CurrentNode returns the live current stage.
func (e *Engine) CurrentNode() (*domain.Stage, bool) {
	return e.runtime.CurrentNode()
}

// ActiveDialogue returns the graph of the active session.
func (e *Engine) ActiveDialogue() (*domain.Graph, bool) {
	return e.runtime.ActiveDialogue()
}

// AvailableOptions returns the visible options, flagging gated ones.
func (e *Engine) AvailableOptions() ([]domain.AvailableOption, error) {
	return e.runtime.AvailableOptions()
}

// EnhanceOptions previews the visible options with an armed strategic action.
func (e *Engine) EnhanceOptions(armed strategy.Kind) ([]domain.AvailableOption, error) {
	return e.runtime.EnhanceOptions(armed)
}

// SelectOption applies the option's effects and advances the session.
func (e *Engine) SelectOption(ctx context.Context, optionID string) error {
	return e.runtime.SelectOption(ctx, optionID)
}

// TakeTangent jumps to the current stage's tangent stage.
func (e *Engine) TakeTangent(ctx context.Context) error {
	return e.runtime.TakeTangent(ctx)
}

// ApplyStrategicAction dispatches a strategic action against the live session.
func (e *Engine) ApplyStrategicAction(ctx context.Context, kind strategy.Kind, characterID, stageID string) (strategy.Outcome, error) {
	return e.runtime.ApplyStrategicAction(ctx, kind, characterID, stageID)
}

// Session returns a copy of the active session, or nil when idle.
func (e *Engine) Session() *domain.Session {
	return e.runtime.Session()
}

// Grade grades the active session, or the last finished one when idle.
func (e *Engine) Grade() (domain.Grade, error) {
	return e.runtime.Grade()
}

// Snapshot captures the engine state for the host's save system.
func (e *Engine) Snapshot() *domain.Snapshot {
	return e.runtime.Snapshot()
}

// Restore replaces the engine state with a previously captured snapshot.
func (e *Engine) Restore(ctx context.Context, snap *domain.Snapshot) error {
	return e.runtime.Restore(ctx, snap)
}

// Resources returns the current insight and momentum.
func (e *Engine) Resources() domain.ResourceState {
	return e.runtime.Resources().State()
}

// Graphs lists the available graph IDs.
func (e *Engine) Graphs() ([]string, error) {
	return e.registry.Graphs()
}

// Graph returns a loaded, validated graph.
func (e *Engine) Graph(id string) (*domain.Graph, error) {
	return e.registry.Graph(id)
}

// Mentor returns the mentor record, including its live relationship value.
func (e *Engine) Mentor(id string) (domain.Mentor, error) {
	return e.registry.Mentor(id)
}

// Content returns the underlying content source.
func (e *Engine) Content() ports.ContentRegistry {
	return e.content
}

// Validate runs the authoring checks on one graph.
func (e *Engine) Validate(graphID string) (*validator.Report, error) {
	g, err := e.content.GetGraph(graphID)
	if err != nil {
		return nil, err
	}
	speakers := make([]string, 0)
	for _, m := range e.registry.Mentors() {
		speakers = append(speakers, m.ID)
	}
	return validator.ValidateGraph(g, validator.WithSpeakers(speakers...)), nil
}

// Reload rescans the content source and drops cached graphs.
func (e *Engine) Reload() error {
	if r, ok := e.content.(Reloadable); ok {
		if err := r.Reload(); err != nil {
			return err
		}
	}
	e.registry.Invalidate()
	return nil
}

// Watch reports changed graph IDs, invalidating the graph cache on each change.
// Sessions already running keep the graph they started with.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	w, ok := e.content.(Watchable)
	if !ok {
		return nil, ErrWatchUnsupported
	}
	events, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan string, 1)
	go func() {
		defer close(out)
		for id := range events {
			e.registry.Invalidate()
			e.logger.Info("content changed", "graph", id)
			select {
			case out <- id:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
