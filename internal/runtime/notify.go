package runtime

import (
	"context"
	"sync"

	"github.com/aretw0/dialectic/pkg/domain"
)

// Notifier delivers lifecycle events outside the engine's turn lock.
// Events raised while a turn is held are queued in order and delivered once
// the turn is released, so a hook may call back into the engine.
// Outside a turn, events are delivered immediately.
type Notifier struct {
	target domain.LifecycleHooks

	mu    sync.Mutex
	held  int
	queue []func()
}

// NewNotifier wraps the hooks that ultimately receive events.
func NewNotifier(hooks domain.LifecycleHooks) *Notifier {
	return &Notifier{target: hooks}
}

// Hooks returns a hook set that routes every event through the notifier.
// Give it to ledgers and registries that the engine mutates during a turn.
func (n *Notifier) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDialogueStarted:           deferTo(n, n.target.OnDialogueStarted),
		OnDialogueEnded:             deferTo(n, n.target.OnDialogueEnded),
		OnInsightGained:             deferTo(n, n.target.OnInsightGained),
		OnMomentumChanged:           deferTo(n, n.target.OnMomentumChanged),
		OnKnowledgeDiscovered:       deferTo(n, n.target.OnKnowledgeDiscovered),
		OnMentorRelationshipChanged: deferTo(n, n.target.OnMentorRelationshipChanged),
		OnStrategicAction:           deferTo(n, n.target.OnStrategicAction),
	}
}

func deferTo[E any](n *Notifier, fn func(context.Context, E)) func(context.Context, E) {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context, e E) {
		n.post(func() { fn(ctx, e) })
	}
}

func (n *Notifier) post(deliver func()) {
	n.mu.Lock()
	if n.held > 0 {
		n.queue = append(n.queue, deliver)
		n.mu.Unlock()
		return
	}
	n.mu.Unlock()
	deliver()
}

func (n *Notifier) hold() {
	n.mu.Lock()
	n.held++
	n.mu.Unlock()
}

// unhold returns the queued deliveries once no turn is held.
func (n *Notifier) unhold() []func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.held--
	if n.held > 0 {
		return nil
	}
	pending := n.queue
	n.queue = nil
	return pending
}
