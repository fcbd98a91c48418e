package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/dialectic/pkg/domain"
)

// Chain fans every event out to each hook set in order.
func Chain(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks

	for _, h := range sets {
		out.OnDialogueStarted = join(out.OnDialogueStarted, h.OnDialogueStarted)
		out.OnDialogueEnded = join(out.OnDialogueEnded, h.OnDialogueEnded)
		out.OnInsightGained = join(out.OnInsightGained, h.OnInsightGained)
		out.OnMomentumChanged = join(out.OnMomentumChanged, h.OnMomentumChanged)
		out.OnKnowledgeDiscovered = join(out.OnKnowledgeDiscovered, h.OnKnowledgeDiscovered)
		out.OnMentorRelationshipChanged = join(out.OnMentorRelationshipChanged, h.OnMentorRelationshipChanged)
		out.OnStrategicAction = join(out.OnStrategicAction, h.OnStrategicAction)
	}
	return out
}

func join[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}

// LogHooks writes one structured record per event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDialogueStarted: func(ctx context.Context, e *domain.DialogueEvent) {
			logger.InfoContext(ctx, "dialogue_started", "graph", e.GraphID)
		},
		OnDialogueEnded: func(ctx context.Context, e *domain.DialogueEvent) {
			logger.InfoContext(ctx, "dialogue_ended", "graph", e.GraphID, "completed", e.Completed)
		},
		OnInsightGained: func(ctx context.Context, e *domain.ResourceEvent) {
			logger.DebugContext(ctx, "insight_gained", "change", e.Change, "value", e.Value, "source", e.Source)
		},
		OnMomentumChanged: func(ctx context.Context, e *domain.ResourceEvent) {
			logger.DebugContext(ctx, "momentum_changed", "change", e.Change, "value", e.Value, "source", e.Source)
		},
		OnKnowledgeDiscovered: func(ctx context.Context, e *domain.KnowledgeEvent) {
			logger.InfoContext(ctx, "knowledge_discovered", "concept", e.ConceptID, "source", e.Source)
		},
		OnMentorRelationshipChanged: func(ctx context.Context, e *domain.RelationshipEvent) {
			logger.DebugContext(ctx, "mentor_relationship_changed",
				"mentor", e.MentorID,
				"previous", e.PreviousValue,
				"value", e.NewValue,
			)
		},
		OnStrategicAction: func(ctx context.Context, e *domain.ActionEvent) {
			logger.InfoContext(ctx, "strategic_action",
				"kind", e.Kind,
				"character", e.CharacterID,
				"stage", e.StageID,
				"success", e.Success,
			)
		},
	}
}
