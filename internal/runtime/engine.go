package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/dialectic/internal/logging"
	"github.com/aretw0/dialectic/pkg/domain"
	"github.com/aretw0/dialectic/pkg/ledger"
	"github.com/aretw0/dialectic/pkg/registry"
	"github.com/aretw0/dialectic/pkg/strategy"
	"golang.org/x/sync/semaphore"
)

// Engine is the dialogue state machine and strategic action dispatcher.
// Mutating operations are serialised; a second caller queues behind the first
// and gives up only when its context is cancelled.
type Engine struct {
	graphs    *registry.Registry
	resources *ledger.Resources
	knowledge *ledger.Knowledge
	handlers  strategy.Handlers
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	notifier  *Notifier
	events    domain.LifecycleHooks

	turn *semaphore.Weighted

	mu       sync.RWMutex
	session  *domain.Session
	graph    *domain.Graph
	finished *domain.Session
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger configures a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers notification hooks.
// The hooks are shared with ledgers the engine creates itself and are never
// called while the engine's turn is held.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithNotifier shares a notifier with collaborators built outside the engine,
// such as the registry. It takes precedence over WithLifecycleHooks.
func WithNotifier(n *Notifier) Option {
	return func(e *Engine) {
		e.notifier = n
	}
}

// WithHandlers replaces the strategic action handlers.
func WithHandlers(h strategy.Handlers) Option {
	return func(e *Engine) {
		e.handlers = h
	}
}

// WithResources injects an existing resource ledger.
func WithResources(r *ledger.Resources) Option {
	return func(e *Engine) {
		e.resources = r
	}
}

// WithKnowledge injects an existing knowledge ledger.
func WithKnowledge(k *ledger.Knowledge) Option {
	return func(e *Engine) {
		e.knowledge = k
	}
}

// NewEngine creates an idle engine over the given graph store.
func NewEngine(graphs *registry.Registry, opts ...Option) *Engine {
	e := &Engine{
		graphs:   graphs,
		handlers: strategy.DefaultHandlers(strategy.DefaultCatalog()),
		logger:   logging.NewNop(),
		turn:     semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.notifier == nil {
		e.notifier = NewNotifier(e.hooks)
	}
	e.events = e.notifier.Hooks()
	if e.graphs == nil {
		e.graphs = registry.New(nil, registry.WithLogger(e.logger), registry.WithLifecycleHooks(e.events))
	}
	if e.resources == nil {
		e.resources = ledger.NewResources(ledger.WithLogger(e.logger), ledger.WithLifecycleHooks(e.events))
	}
	if e.knowledge == nil {
		e.knowledge = ledger.NewKnowledge(ledger.WithLogger(e.logger), ledger.WithLifecycleHooks(e.events))
	}
	return e
}

// Resources returns the resource ledger.
func (e *Engine) Resources() *ledger.Resources { return e.resources }

// Knowledge returns the knowledge ledger.
func (e *Engine) Knowledge() *ledger.Knowledge { return e.knowledge }

// Registry returns the graph store that owns mentor relationships.
func (e *Engine) Registry() *registry.Registry { return e.graphs }

func (e *Engine) acquire(ctx context.Context) error {
	if err := e.turn.Acquire(ctx, 1); err != nil {
		return err
	}
	e.notifier.hold()
	return nil
}

// release ends the turn, then delivers the events it raised.
func (e *Engine) release() {
	pending := e.notifier.unhold()
	e.turn.Release(1)
	for _, deliver := range pending {
		deliver()
	}
}

// StartDialogue opens a session on the start stage of graphID.
// An active session is replaced and reported as ended without completion.
func (e *Engine) StartDialogue(ctx context.Context, graphID string) error {
	if err := e.acquire(ctx); err != nil {
		return err
	}
	defer e.release()

	g, err := e.graphs.Graph(graphID)
	if err != nil {
		e.logger.Warn("cannot start dialogue", "graph", graphID, "err", err)
		return err
	}

	e.mu.Lock()
	prev := e.session
	e.session = domain.NewSession(g.ID, g.StartStageID)
	e.graph = g
	e.mu.Unlock()

	if prev != nil {
		e.logger.Debug("replacing active dialogue", "graph", prev.GraphID)
		e.events.DialogueEnded(ctx, prev.GraphID, false)
	}
	e.logger.Info("dialogue started", "graph", g.ID, "stage", g.StartStageID)
	e.events.DialogueStarted(ctx, g.ID)
	return nil
}

// EndDialogue forcibly returns to idle. It is a no-op when already idle.
func (e *Engine) EndDialogue(ctx context.Context) error {
	if err := e.acquire(ctx); err != nil {
		return err
	}
	defer e.release()

	e.end(ctx, false)
	return nil
}

func (e *Engine) end(ctx context.Context, completed bool) {
	e.mu.Lock()
	s := e.session
	if s == nil {
		e.mu.Unlock()
		return
	}
	e.finished = s
	e.session = nil
	e.graph = nil
	e.mu.Unlock()

	e.logger.Info("dialogue ended", "graph", s.GraphID, "completed", completed)
	e.events.DialogueEnded(ctx, s.GraphID, completed)
}

// CurrentNode returns a copy of the live current stage with strategic rewrites applied.
func (e *Engine) CurrentNode() (*domain.Stage, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stage, ok := e.liveStage()
	if !ok {
		return nil, false
	}
	return stage, true
}

// liveStage merges the session overlay onto the authored current stage.
// Callers must hold e.mu.
func (e *Engine) liveStage() (*domain.Stage, bool) {
	if e.session == nil {
		return nil, false
	}
	authored, ok := e.graph.Stage(e.session.CurrentStageID)
	if !ok {
		return nil, false
	}
	stage := authored.Clone()
	if overlay := e.session.ActiveOverlay(); overlay != nil {
		if overlay.Text != "" {
			stage.Text = overlay.Text
		}
		if overlay.Options != nil {
			stage.Options = domain.CloneOptions(overlay.Options)
		}
	}
	return stage, true
}

// ActiveDialogue returns the graph of the active session.
// The graph is shared and must be treated as read-only.
func (e *Engine) ActiveDialogue() (*domain.Graph, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.session == nil {
		return nil, false
	}
	return e.graph, true
}

// Session returns a copy of the active session, or nil when idle.
func (e *Engine) Session() *domain.Session {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.Clone()
}

// Grade grades the active session, or the last finished one when idle.
func (e *Engine) Grade() (domain.Grade, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s := e.session
	if s == nil {
		s = e.finished
	}
	if s == nil {
		return "", domain.ErrNoActiveDialogue
	}
	return domain.GradeHistory(s.History), nil
}

// Snapshot captures the engine state for the host's save system.
func (e *Engine) Snapshot() *domain.Snapshot {
	e.mu.RLock()
	session := e.session.Clone()
	e.mu.RUnlock()

	return &domain.Snapshot{
		Session:       session,
		Resources:     e.resources.State(),
		Knowledge:     e.knowledge.State(),
		Relationships: e.graphs.Relationships(),
		SavedAt:       time.Now().UTC(),
	}
}

// Restore replaces the engine state with a snapshot.
// The snapshot is checked against the graph store first; on error nothing changes.
func (e *Engine) Restore(ctx context.Context, snap *domain.Snapshot) error {
	if snap == nil {
		return domain.ErrInvalidArgument
	}
	if err := e.acquire(ctx); err != nil {
		return err
	}
	defer e.release()

	var g *domain.Graph
	if snap.Session != nil {
		var err error
		g, err = e.graphs.Graph(snap.Session.GraphID)
		if err != nil {
			e.logger.Warn("cannot restore snapshot", "graph", snap.Session.GraphID, "err", err)
			return err
		}
		if _, ok := g.Stage(snap.Session.CurrentStageID); !ok {
			e.logger.Warn("cannot restore snapshot", "graph", g.ID, "stage", snap.Session.CurrentStageID)
			return domain.ErrUnknownStage
		}
	}

	e.resources.Restore(snap.Resources)
	e.knowledge.Restore(snap.Knowledge)
	e.graphs.RestoreRelationships(snap.Relationships)

	e.mu.Lock()
	e.session = snap.Session.Clone()
	e.graph = g
	e.mu.Unlock()

	e.logger.Debug("snapshot restored", "active", snap.Session != nil)
	return nil
}
