package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/dialectic/internal/logging"
	"github.com/aretw0/dialectic/pkg/domain"
	"github.com/aretw0/dialectic/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed slot lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// Snapshotter is the part of the engine a save slot needs.
type Snapshotter interface {
	Snapshot() *domain.Snapshot
	Restore(ctx context.Context, snap *domain.Snapshot) error
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates save-slot access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.SnapshotStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager over the given snapshot store.
func NewManager(store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(slotID) after unlocking.
func (m *Manager) acquire(slotID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[slotID]
	if !exists {
		entry = &lockEntry{}
		m.locks[slotID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(slotID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[slotID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, slotID)
	}
}

// NewSlotID returns a fresh random slot ID.
func NewSlotID() string {
	return uuid.NewString()
}

// Load retrieves a snapshot from the store.
func (m *Manager) Load(ctx context.Context, slotID string) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := m.WithLock(ctx, slotID, func(ctx context.Context) error {
		var err error
		snap, err = m.store.Load(ctx, slotID)
		return err
	})
	return snap, err
}

// Save persists a snapshot, stamping it with the slot ID.
func (m *Manager) Save(ctx context.Context, slotID string, snap *domain.Snapshot) error {
	if slotID == "" || snap == nil {
		return domain.ErrInvalidArgument
	}
	return m.WithLock(ctx, slotID, func(ctx context.Context) error {
		stamped := *snap
		stamped.ID = slotID
		return m.store.Save(ctx, slotID, &stamped)
	})
}

// Checkpoint captures the engine and saves it. An empty slotID allocates a new
// slot; the slot used is returned.
func (m *Manager) Checkpoint(ctx context.Context, slotID string, eng Snapshotter) (string, error) {
	if slotID == "" {
		slotID = NewSlotID()
	}
	if err := m.Save(ctx, slotID, eng.Snapshot()); err != nil {
		return "", err
	}
	m.logger.Info("checkpoint saved", "slot", slotID)
	return slotID, nil
}

// Resume loads a slot into the engine.
func (m *Manager) Resume(ctx context.Context, slotID string, eng Snapshotter) error {
	snap, err := m.Load(ctx, slotID)
	if err != nil {
		return err
	}
	if err := eng.Restore(ctx, snap); err != nil {
		return fmt.Errorf("failed to restore slot %s: %w", slotID, err)
	}
	m.logger.Info("checkpoint resumed", "slot", slotID)
	return nil
}

// ResumeOrStart resumes slotID, or calls start when the slot does not exist yet.
func (m *Manager) ResumeOrStart(ctx context.Context, slotID string, eng Snapshotter, start func(context.Context) error) (resumed bool, err error) {
	err = m.Resume(ctx, slotID, eng)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, domain.ErrSnapshotNotFound) {
		return false, fmt.Errorf("failed to check slot existence: %w", err)
	}
	return false, start(ctx)
}

// Delete removes the slot from the store.
func (m *Manager) Delete(ctx context.Context, slotID string) error {
	return m.WithLock(ctx, slotID, func(ctx context.Context) error {
		return m.store.Delete(ctx, slotID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}

// WithLock executes a function while holding the lock for the slot.
func (m *Manager) WithLock(ctx context.Context, slotID string, fn func(context.Context) error) error {
	entry := m.acquire(slotID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(slotID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, slotID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"slot", slotID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
