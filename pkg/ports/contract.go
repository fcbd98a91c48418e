package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/dialectic/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore implementation
// adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	slotID := "contract-test-slot-" + time.Now().Format("20060102150405")

	newSnapshot := func(id string) *domain.Snapshot {
		session := domain.NewSession("kapoor-calibration", "intro")
		session.History = append(session.History, domain.HistoryEntry{StageID: "intro", OptionID: "go"})
		session.CurrentStageID = "basics"
		return &domain.Snapshot{
			ID:            id,
			Session:       session,
			Resources:     domain.ResourceState{Insight: 15, Momentum: 2},
			Knowledge:     domain.KnowledgeState{Discovered: []string{"pdd"}, Mastery: map[string]int{"pdd": 10}},
			Relationships: map[string]int{"kapoor": 42},
			SavedAt:       time.Now().UTC().Truncate(time.Second),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		snap := newSnapshot(slotID)

		err := store.Save(ctx, slotID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, slotID)
		require.NoError(t, err, "Load should not return error")
		require.NotNil(t, loaded.Session)
		assert.Equal(t, "basics", loaded.Session.CurrentStageID)
		assert.Equal(t, snap.Session.History, loaded.Session.History)
		assert.Equal(t, snap.Resources, loaded.Resources)
		assert.Equal(t, 42, loaded.Relationships["kapoor"])
		assert.Equal(t, []string{"pdd"}, loaded.Knowledge.Discovered)
		assert.True(t, snap.SavedAt.Equal(loaded.SavedAt))
	})

	t.Run("Load Is Isolated", func(t *testing.T) {
		loaded, err := store.Load(ctx, slotID)
		require.NoError(t, err)
		loaded.Relationships["kapoor"] = 0
		loaded.Session.CurrentStageID = "mutated"

		again, err := store.Load(ctx, slotID)
		require.NoError(t, err)
		assert.Equal(t, 42, again.Relationships["kapoor"])
		assert.Equal(t, "basics", again.Session.CurrentStageID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+slotID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, slotID, newSnapshot(slotID))
		require.NoError(t, err)

		err = store.Delete(ctx, slotID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, slotID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := slotID + "-1"
		id2 := slotID + "-2"
		_ = store.Save(ctx, id1, newSnapshot(id1))
		_ = store.Save(ctx, id2, newSnapshot(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		slots, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, slots, id1)
		assert.Contains(t, slots, id2)
	})
}
