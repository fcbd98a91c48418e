package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/dialectic/internal/config"
	"github.com/aretw0/dialectic/pkg/adapters/file"
	"github.com/aretw0/dialectic/pkg/adapters/memory"
	"github.com/aretw0/dialectic/pkg/adapters/redis"
	"github.com/aretw0/dialectic/pkg/adapters/sqlite"
	"github.com/aretw0/dialectic/pkg/persistence/middleware"
	"github.com/aretw0/dialectic/pkg/ports"
	"github.com/aretw0/dialectic/pkg/session"
)

// Saves bundles the save-slot manager with the cleanup for its backend.
type Saves struct {
	Manager *session.Manager
	close   func() error
}

// Close releases the backend connection, if any.
func (s *Saves) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

// OpenSaves builds the snapshot store selected by cfg.Store.
// Redis also provides the cross-process slot lock. A configured SaveKey wraps
// the store in encryption.
func OpenSaves(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Saves, error) {
	var (
		store   ports.SnapshotStore
		locker  ports.DistributedLocker
		closeFn func() error
	)

	switch cfg.Store {
	case config.StoreMemory, "":
		store = memory.NewStore()
	case config.StoreFile:
		store = file.NewStore(cfg.SaveDir)
	case config.StoreRedis:
		rs := redis.New(cfg.RedisAddr, "", 0)
		if err := rs.Client().Ping(ctx).Err(); err != nil {
			_ = rs.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		store = rs
		locker = redis.NewLocker(rs.Client(), "dialectic:lock:")
		closeFn = rs.Close
	case config.StoreSQLite:
		ss, err := sqlite.NewStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = ss
		closeFn = ss.Close
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}

	if cfg.SaveKey != "" {
		key, err := middleware.ParseKey(cfg.SaveKey)
		if err != nil {
			if closeFn != nil {
				err = errors.Join(err, closeFn())
			}
			return nil, err
		}
		store = middleware.Chain(store, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}

	opts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}

	logger.Debug("save store ready", "backend", cfg.Store, "encrypted", cfg.SaveKey != "")
	return &Saves{Manager: session.NewManager(store, opts...), close: closeFn}, nil
}
