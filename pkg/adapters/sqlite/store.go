package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/dialectic/pkg/domain"
	_ "modernc.org/sqlite"
)

// Store implements ports.SnapshotStore on a SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at path and runs migrations.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: mkdir %s: %w", filepath.Dir(path), err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}

	// Single connection avoids write contention between save slots.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return err
	}

	var version int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version); err != nil {
		return err
	}

	if version < 1 {
		if _, err := s.db.Exec(`
			CREATE TABLE IF NOT EXISTS snapshots (
				slot_id    TEXT PRIMARY KEY,
				graph_id   TEXT NOT NULL DEFAULT '',
				stage_id   TEXT NOT NULL DEFAULT '',
				data       BLOB NOT NULL,
				saved_at   TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_snapshots_saved_at ON snapshots(saved_at);
		`); err != nil {
			return err
		}
		if _, err := s.db.Exec(`INSERT INTO schema_version (version) VALUES (1)`); err != nil {
			return err
		}
	}
	return nil
}

// Save upserts the snapshot for slotID.
func (s *Store) Save(ctx context.Context, slotID string, snap *domain.Snapshot) error {
	if slotID == "" {
		return fmt.Errorf("%w: slot ID cannot be empty", domain.ErrInvalidArgument)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("sqlite: marshal snapshot: %w", err)
	}

	var graphID, stageID string
	if snap.Session != nil {
		graphID, stageID = snap.Session.GraphID, snap.Session.CurrentStageID
	}
	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (slot_id, graph_id, stage_id, data, saved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(slot_id) DO UPDATE SET
			graph_id = excluded.graph_id,
			stage_id = excluded.stage_id,
			data     = excluded.data,
			saved_at = excluded.saved_at`,
		slotID, graphID, stageID, data, savedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("sqlite: save %s: %w", slotID, err)
	}
	return nil
}

// Load returns the snapshot for slotID.
func (s *Store) Load(ctx context.Context, slotID string) (*domain.Snapshot, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM snapshots WHERE slot_id = ?`, slotID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load %s: %w", slotID, err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("sqlite: unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Delete removes the slot. Deleting a missing slot is not an error.
func (s *Store) Delete(ctx context.Context, slotID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE slot_id = ?`, slotID); err != nil {
		return fmt.Errorf("sqlite: delete %s: %w", slotID, err)
	}
	return nil
}

// List returns the slot IDs, most recently saved first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slot_id FROM snapshots ORDER BY saved_at DESC, slot_id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list: %w", err)
	}
	defer rows.Close()

	var slots []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		slots = append(slots, id)
	}
	return slots, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
