package ledger

import (
	"log/slog"

	"github.com/aretw0/dialectic/internal/logging"
	"github.com/aretw0/dialectic/pkg/domain"
)

type config struct {
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// Option configures a ledger.
type Option func(*config)

// WithLogger configures a logger for the ledger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers notification hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = hooks
	}
}

func newConfig(opts []Option) config {
	c := config{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	return c
}
