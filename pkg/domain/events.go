package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventDialogueStarted           EventType = "dialogue_started"
	EventDialogueEnded             EventType = "dialogue_ended"
	EventInsightGained             EventType = "insight_gained"
	EventMomentumChanged           EventType = "momentum_changed"
	EventKnowledgeDiscovered       EventType = "knowledge_discovered"
	EventMentorRelationshipChanged EventType = "mentor_relationship_changed"
	EventStrategicAction           EventType = "strategic_action"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NewEventBase stamps an event of the given type with the current time.
func NewEventBase(t EventType) EventBase {
	return EventBase{Timestamp: time.Now(), Type: t}
}

// DialogueEvent is emitted when a dialogue starts or ends.
type DialogueEvent struct {
	EventBase
	GraphID string `json:"graph_id"`

	// Completed is false when the host ended the dialogue explicitly.
	Completed bool `json:"completed,omitempty"`
}

// ResourceEvent is emitted when insight or momentum changes.
type ResourceEvent struct {
	EventBase
	Change int    `json:"change"`
	Source string `json:"source"`
	Value  int    `json:"value"`
}

// KnowledgeEvent is emitted the first time a concept is discovered.
type KnowledgeEvent struct {
	EventBase
	ConceptID string `json:"concept_id"`
	Source    string `json:"source"`
}

// RelationshipEvent is emitted when a mentor relationship changes.
type RelationshipEvent struct {
	EventBase
	MentorID      string `json:"mentor_id"`
	PreviousValue int    `json:"previous_value"`
	NewValue      int    `json:"new_value"`
	Change        int    `json:"change"`
}

// ActionEvent is emitted after every strategic action dispatch.
type ActionEvent struct {
	EventBase
	Kind        string `json:"kind"`
	CharacterID string `json:"character_id"`
	StageID     string `json:"stage_id"`
	Success     bool   `json:"success"`
}

// LifecycleHooks defines fire-and-forget callbacks consumed by an external event bus.
type LifecycleHooks struct {
	OnDialogueStarted           func(context.Context, *DialogueEvent)
	OnDialogueEnded             func(context.Context, *DialogueEvent)
	OnInsightGained             func(context.Context, *ResourceEvent)
	OnMomentumChanged           func(context.Context, *ResourceEvent)
	OnKnowledgeDiscovered       func(context.Context, *KnowledgeEvent)
	OnMentorRelationshipChanged func(context.Context, *RelationshipEvent)
	OnStrategicAction           func(context.Context, *ActionEvent)
}

func (h LifecycleHooks) DialogueStarted(ctx context.Context, graphID string) {
	if h.OnDialogueStarted != nil {
		h.OnDialogueStarted(ctx, &DialogueEvent{EventBase: NewEventBase(EventDialogueStarted), GraphID: graphID})
	}
}

func (h LifecycleHooks) DialogueEnded(ctx context.Context, graphID string, completed bool) {
	if h.OnDialogueEnded != nil {
		h.OnDialogueEnded(ctx, &DialogueEvent{EventBase: NewEventBase(EventDialogueEnded), GraphID: graphID, Completed: completed})
	}
}

func (h LifecycleHooks) InsightGained(ctx context.Context, change, value int, source string) {
	if h.OnInsightGained != nil {
		h.OnInsightGained(ctx, &ResourceEvent{EventBase: NewEventBase(EventInsightGained), Change: change, Value: value, Source: source})
	}
}

func (h LifecycleHooks) MomentumChanged(ctx context.Context, change, value int, source string) {
	if h.OnMomentumChanged != nil {
		h.OnMomentumChanged(ctx, &ResourceEvent{EventBase: NewEventBase(EventMomentumChanged), Change: change, Value: value, Source: source})
	}
}

func (h LifecycleHooks) KnowledgeDiscovered(ctx context.Context, conceptID, source string) {
	if h.OnKnowledgeDiscovered != nil {
		h.OnKnowledgeDiscovered(ctx, &KnowledgeEvent{EventBase: NewEventBase(EventKnowledgeDiscovered), ConceptID: conceptID, Source: source})
	}
}

func (h LifecycleHooks) MentorRelationshipChanged(ctx context.Context, mentorID string, previous, next int) {
	if h.OnMentorRelationshipChanged != nil {
		h.OnMentorRelationshipChanged(ctx, &RelationshipEvent{
			EventBase:     NewEventBase(EventMentorRelationshipChanged),
			MentorID:      mentorID,
			PreviousValue: previous,
			NewValue:      next,
			Change:        next - previous,
		})
	}
}

func (h LifecycleHooks) StrategicAction(ctx context.Context, kind, characterID, stageID string, success bool) {
	if h.OnStrategicAction != nil {
		h.OnStrategicAction(ctx, &ActionEvent{
			EventBase:   NewEventBase(EventStrategicAction),
			Kind:        kind,
			CharacterID: characterID,
			StageID:     stageID,
			Success:     success,
		})
	}
}
