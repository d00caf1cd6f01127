package jsonvault

import (
	"log/slog"
	"os"

	"github.com/aretw0/jsonvault/internal/platform"
	"github.com/aretw0/jsonvault/pkg/adapters/fs"
	"github.com/aretw0/jsonvault/pkg/core"
	"github.com/aretw0/jsonvault/pkg/typed"
)

// --- Types ---

// Document is a public alias for a stored JSON object.
type Document = core.Document

// Filter is a public alias for a query predicate.
type Filter = core.Filter

// Service is a public alias for the database service.
type Service = core.Service

// DocumentModel is a public alias for the typed document model.
type DocumentModel[T any] = typed.DocumentModel[T]

// TypedService is a public alias for the typed service.
type TypedService[T any] = typed.Service[T]

// --- Errors ---

var (
	ErrInvalidInput  = core.ErrInvalidInput
	ErrNotFound      = core.ErrNotFound
	ErrDecode        = core.ErrDecode
	ErrDecrypt       = core.ErrDecrypt
	ErrIO            = core.ErrIO
	ErrInvalidConfig = core.ErrInvalidConfig
	ErrReadOnly      = core.ErrReadOnly
)

// --- Configuration ---

// Option defines a functional option for configuring jsonvault.
type Option = platform.Option

// WithEncryption enables AES-256-CBC encryption of the database file.
func WithEncryption(enabled bool) Option {
	return platform.WithEncryption(enabled)
}

// WithKey sets the encryption key (64 hex characters).
func WithKey(hexKey string) Option {
	return platform.WithKey(hexKey)
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithReadOnly refuses every mutation and never creates the file.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithFileMode sets the permissions of the database file.
func WithFileMode(mode os.FileMode) Option {
	return platform.WithFileMode(mode)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// --- Factory ---

// Open opens (or creates) the database file at path.
func Open(path string, opts ...Option) (*core.Service, error) {
	return platform.New(path, opts...)
}

// Equals builds an equality filter.
func Equals(property string, value any) Filter {
	return core.Equals(property, value)
}

// GenerateKey returns a new random key suitable for WithKey.
func GenerateKey() (string, error) {
	return fs.GenerateKey()
}

// --- Typed Factories ---

// NewTypedService binds T to the documents of docType in svc.
func NewTypedService[T any](svc *core.Service, docType string) *typed.Service[T] {
	return typed.NewService[T](svc, docType)
}

// OpenTypedService simplifies creating a TypedService from a path.
func OpenTypedService[T any](path, docType string, opts ...Option) (*typed.Service[T], error) {
	svc, err := Open(path, opts...)
	if err != nil {
		return nil, err
	}
	return typed.NewService[T](svc, docType), nil
}
