package platform

import (
	"log/slog"
	"os"

	"github.com/aretw0/jsonvault/pkg/core"
)

// options holds the internal configuration for the jsonvault service.
type options struct {
	repository core.Repository
	logger     *slog.Logger
	encrypted  bool
	key        string
	readOnly   bool
	fileMode   os.FileMode
}

// Option defines a functional option for configuring jsonvault.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{}
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository allows injecting a custom storage adapter (e.g. a mock).
// If provided, the default file adapter is skipped.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithEncryption enables AES-256-CBC encryption of the database file.
// A key must be supplied with WithKey.
func WithEncryption(enabled bool) Option {
	return func(o *options) {
		o.encrypted = enabled
	}
}

// WithKey sets the encryption key as 64 hex characters.
func WithKey(hexKey string) Option {
	return func(o *options) {
		o.key = hexKey
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Save, Delete and Flush return ErrReadOnly.
// 2. A missing database file is not created.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithFileMode sets the permissions of the database file. Defaults to 0600.
func WithFileMode(mode os.FileMode) Option {
	return func(o *options) {
		o.fileMode = mode
	}
}
