package ports

import (
	"context"

	"github.com/aretw0/dialectic/pkg/domain"
	"github.com/aretw0/dialectic/pkg/strategy"
)

// DialogueEngine is the host-facing API of the engine.
// This is the primary interface used by adapters (e.g., HTTP, CLI).
type DialogueEngine interface {
	// StartDialogue opens a session on the start stage of graphID.
	StartDialogue(ctx context.Context, graphID string) error

	// EndDialogue forcibly returns to idle. It is a no-op when already idle.
	EndDialogue(ctx context.Context) error

	// CurrentNode returns the live current stage, with strategic rewrites applied.
	CurrentNode() (*domain.Stage, bool)

	// ActiveDialogue returns the graph of the active session.
	ActiveDialogue() (*domain.Graph, bool)

	// AvailableOptions returns the visible options, flagging gated ones.
	AvailableOptions() ([]domain.AvailableOption, error)

	// EnhanceOptions returns the visible options decorated for an armed strategic
	// action without committing it.
	EnhanceOptions(armed strategy.Kind) ([]domain.AvailableOption, error)

	// SelectOption applies the option's effects and advances the session.
	SelectOption(ctx context.Context, optionID string) error

	// TakeTangent jumps to the current stage's tangent stage.
	TakeTangent(ctx context.Context) error

	// ApplyStrategicAction dispatches a strategic action against the live session
	// and returns the outcome as applied.
	ApplyStrategicAction(ctx context.Context, kind strategy.Kind, characterID, stageID string) (strategy.Outcome, error)

	// Session returns a copy of the active session, or nil when idle.
	Session() *domain.Session

	// Grade grades the active session, or the last finished one when idle.
	Grade() (domain.Grade, error)

	// Snapshot captures the engine state for the host's save system.
	Snapshot() *domain.Snapshot

	// Restore replaces the engine state with a previously captured snapshot.
	Restore(ctx context.Context, snap *domain.Snapshot) error
}
