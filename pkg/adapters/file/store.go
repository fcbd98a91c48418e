package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/dialectic/pkg/domain"
)

// Store implements ports.SnapshotStore using the local filesystem.
// It stores snapshots as JSON files in a configured directory.
type Store struct {
	BasePath string
}

// NewStore creates a Store rooted at basePath.
// If basePath is empty, it defaults to ".dialectic/saves".
func NewStore(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".dialectic", "saves")
	}
	return &Store{BasePath: basePath}
}

func (f *Store) path(slotID string) (string, error) {
	if slotID == "" || strings.ContainsAny(slotID, `/\`) || slotID == "." || slotID == ".." {
		return "", fmt.Errorf("%w: invalid slot ID %q", domain.ErrInvalidArgument, slotID)
	}
	return filepath.Join(f.BasePath, slotID+".json"), nil
}

// Save writes the snapshot through a temporary file so a crash never leaves a torn save.
func (f *Store) Save(ctx context.Context, slotID string, snap *domain.Snapshot) error {
	path, err := f.path(slotID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure save directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(f.BasePath, slotID+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create save file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write save file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write save file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to commit save file: %w", err)
	}
	return nil
}

// Load reads the snapshot from its JSON file.
func (f *Store) Load(ctx context.Context, slotID string) (*domain.Snapshot, error) {
	path, err := f.path(slotID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read save file: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Delete removes the save file.
func (f *Store) Delete(ctx context.Context, slotID string) error {
	path, err := f.path(slotID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete save file: %w", err)
	}
	return nil
}

// List returns all save slot IDs.
func (f *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}

	var slots []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			slots = append(slots, strings.TrimSuffix(entry.Name(), ".json"))
		}
	}
	sort.Strings(slots)
	return slots, nil
}
