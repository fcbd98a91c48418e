package ports

import (
	"context"

	"github.com/aretw0/dialectic/pkg/domain"
)

// SnapshotStore defines the interface for persisting engine snapshots.
// It backs the host's save system, enabling "Stop & Resume" play.
type SnapshotStore interface {
	// Save persists the snapshot for a given save slot.
	Save(ctx context.Context, slotID string, snap *domain.Snapshot) error

	// Load retrieves the snapshot for a given save slot.
	// Returns domain.ErrSnapshotNotFound if the slot does not exist.
	Load(ctx context.Context, slotID string) (*domain.Snapshot, error)

	// Delete removes the snapshot for a given save slot.
	Delete(ctx context.Context, slotID string) error

	// List returns the IDs of all stored save slots.
	List(ctx context.Context) ([]string, error)
}
