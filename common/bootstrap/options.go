package bootstrap

import (
	"github.com/walruspass/walruspass/common/config"
	"github.com/walruspass/walruspass/common/db"
	"github.com/walruspass/walruspass/common/logger"
)

// Option configures Setup behavior
type Option func(*options)

type options struct {
	skipDB        bool
	skipMigrate   bool
	skipTelemetry bool
	customConfig  *config.Config
	customLogger  *logger.Logger
	dbInitHook    func(*db.DB) error
}

func defaultOptions() *options {
	return &options{}
}

// WithoutDB skips database initialization (for DB-less tools)
func WithoutDB() Option {
	return func(o *options) {
		o.skipDB = true
	}
}

// WithoutMigrations skips applying schema migrations at startup
func WithoutMigrations() Option {
	return func(o *options) {
		o.skipMigrate = true
	}
}

// WithoutTelemetry skips pprof setup
func WithoutTelemetry() Option {
	return func(o *options) {
		o.skipTelemetry = true
	}
}

// WithConfig supplies a pre-built configuration (used by tests)
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.customConfig = cfg
	}
}

// WithLogger supplies a pre-built logger (used by tests)
func WithLogger(log *logger.Logger) Option {
	return func(o *options) {
		o.customLogger = log
	}
}

// WithDBInitHook runs a hook after the database connects
func WithDBInitHook(hook func(*db.DB) error) Option {
	return func(o *options) {
		o.dbInitHook = hook
	}
}
