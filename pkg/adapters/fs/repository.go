package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/google/uuid"

	"github.com/aretw0/jsonvault/pkg/core"
)

// DefaultFileMode is used for the database file when Config.FileMode is zero.
const DefaultFileMode os.FileMode = 0o600

// Repository implements core.Repository on top of a single JSON file.
//
// The whole dataset lives in memory; every persisted mutation rewrites the
// file. An existing file is loaded in the background after Open returns, and
// every operation waits for that load to finish.
type Repository struct {
	Path   string
	config Config
	codec  codec
	logger *slog.Logger

	mu          sync.RWMutex
	ix          *index
	loadErr     error
	lastPersist *time.Time

	ready chan struct{}
}

// Config holds the configuration for the file repository.
type Config struct {
	Path      string
	Encrypted bool
	Key       string // 64 hex chars; required when Encrypted is set
	ReadOnly  bool
	FileMode  os.FileMode
	Logger    *slog.Logger
}

// Open validates config and opens the database at config.Path.
//
// A missing file is created immediately with an empty database (unless
// ReadOnly). An existing file is hydrated asynchronously: load failures are
// logged and reported by WaitReady, never by Open.
func Open(config Config) (*Repository, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("%w: database path cannot be empty", core.ErrInvalidConfig)
	}
	if config.FileMode == 0 {
		config.FileMode = DefaultFileMode
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var c codec
	if config.Encrypted {
		if config.Key == "" {
			return nil, fmt.Errorf("%w: encryption requires a key", core.ErrInvalidConfig)
		}
		key, err := ParseKey(config.Key)
		if err != nil {
			return nil, err
		}
		c.key = key
	}

	r := &Repository{
		Path:   config.Path,
		config: config,
		codec:  c,
		logger: logger.With("component", "jsonvault", "path", config.Path),
		ix:     newIndex(),
		ready:  make(chan struct{}),
	}

	r.logger.Debug("opening database", "encrypted", config.Encrypted, "read_only", config.ReadOnly)

	_, err := os.Stat(config.Path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if !config.ReadOnly {
			if err := r.persistLocked(); err != nil {
				return nil, err
			}
			r.logger.Debug("created empty database")
		}
		close(r.ready)
	case err != nil:
		return nil, fmt.Errorf("%w: %w", core.ErrIO, err)
	default:
		r.hydrate()
	}

	return r, nil
}

// hydrate loads the file into the index in the background and closes ready
// when done.
func (r *Repository) hydrate() {
	lifecycle.Go(context.Background(), func(ctx context.Context) error {
		finished := false
		defer func() {
			if !finished {
				r.setLoadErr(fmt.Errorf("%w: database load aborted", core.ErrIO))
			}
			close(r.ready)
		}()

		err := r.load()
		finished = true
		if err != nil {
			r.setLoadErr(err)
			r.logger.Error("error loading database", "error", err)
			return nil
		}
		r.logger.Debug("database is loaded", "count", r.count())
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		r.logger.Error("database load panic", "error", err)
	}))
}

func (r *Repository) load() error {
	raw, err := os.ReadFile(r.Path)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrIO, err)
	}
	docs, err := r.codec.decode(raw)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, doc := range docs {
		if doc.ID() == "" || doc.Type() == "" {
			r.logger.Warn("skipping document without id or doc_type", "position", i)
			continue
		}
		r.ix.Put(doc)
	}
	return nil
}

func (r *Repository) setLoadErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadErr = err
}

func (r *Repository) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ix.Len()
}

// Ready is closed once the background load finished, successfully or not.
func (r *Repository) Ready() <-chan struct{} {
	return r.ready
}

// WaitReady blocks until the database is loaded and returns the load error.
func (r *Repository) WaitReady(ctx context.Context) error {
	if err := r.await(ctx); err != nil {
		return err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadErr
}

func (r *Repository) await(ctx context.Context) error {
	select {
	case <-r.ready:
		return nil
	default:
	}
	select {
	case <-r.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// writableLocked reports why the database cannot be mutated, if it cannot.
func (r *Repository) writableLocked() error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if r.loadErr != nil {
		return fmt.Errorf("database failed to load, refusing to overwrite %s: %w", r.Path, r.loadErr)
	}
	return nil
}

// persistLocked rewrites the whole file from the index.
func (r *Repository) persistLocked() error {
	data, err := r.codec.encode(r.ix.All())
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrIO, err)
	}
	if err := writeFileAtomic(r.Path, data, r.config.FileMode); err != nil {
		return fmt.Errorf("%w: %w", core.ErrIO, err)
	}
	now := time.Now()
	r.lastPersist = &now
	r.logger.Debug("database persisted", "count", r.ix.Len(), "bytes", len(data))
	return nil
}

// Find returns copies of the documents of docType matching every filter.
func (r *Repository) Find(ctx context.Context, docType string, filters []core.Filter) ([]core.Document, error) {
	if err := r.await(ctx); err != nil {
		return nil, err
	}
	q, err := core.CompileQuery(docType, filters)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]core.Document, 0)
	for _, doc := range r.ix.All() {
		if q.Match(doc) {
			out = append(out, doc.Clone())
		}
	}
	r.logger.Debug("find", "doc_type", docType, "filters", len(filters), "count", len(out))
	return out, nil
}

// Get returns a copy of the document with the given id.
func (r *Repository) Get(ctx context.Context, id string) (core.Document, error) {
	if err := r.await(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.ix.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	return doc.Clone(), nil
}

// Save inserts content as a new document when it has no id, or merges it
// onto the existing document otherwise. The snapshot is persisted before
// returning; on a write failure the index change is undone.
func (r *Repository) Save(ctx context.Context, docType string, content core.Document) (core.Document, error) {
	if err := r.await(ctx); err != nil {
		return nil, err
	}
	if docType == "" {
		return nil, fmt.Errorf("%w: document type cannot be empty", core.ErrInvalidInput)
	}
	if content == nil {
		return nil, fmt.Errorf("%w: document content cannot be nil", core.ErrInvalidInput)
	}

	id, err := contentID(content)
	if err != nil {
		return nil, err
	}
	if t, ok := content[core.KeyType]; ok && t != nil && t != "" && t != docType {
		return nil, fmt.Errorf("%w: doc_type %v does not match %q", core.ErrInvalidInput, t, docType)
	}

	payload, err := core.Normalize(content)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writableLocked(); err != nil {
		return nil, err
	}

	if id == "" {
		return r.insertLocked(docType, payload)
	}
	return r.updateLocked(docType, id, payload)
}

func (r *Repository) insertLocked(docType string, payload core.Document) (core.Document, error) {
	id := uuid.NewString()
	for _, taken := r.ix.Get(id); taken; _, taken = r.ix.Get(id) {
		id = uuid.NewString()
	}

	doc := payload
	doc[core.KeyID] = id
	doc[core.KeyType] = docType

	r.ix.Put(doc)
	if err := r.persistLocked(); err != nil {
		r.ix.Remove(id)
		return nil, err
	}

	r.logger.Debug("document inserted", "id", id, "doc_type", docType)
	return doc.Clone(), nil
}

func (r *Repository) updateLocked(docType, id string, payload core.Document) (core.Document, error) {
	r.logger.Debug("updating document", "id", id)

	existing, ok := r.ix.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	if existing.Type() != docType {
		return nil, fmt.Errorf("%w: document %s has doc_type %q, not %q",
			core.ErrInvalidInput, id, existing.Type(), docType)
	}

	merged := existing.Clone()
	for k, v := range payload {
		merged[k] = v
	}
	merged[core.KeyType] = existing.Type()

	r.ix.Put(merged)
	if err := r.persistLocked(); err != nil {
		r.ix.Put(existing)
		return nil, err
	}

	return merged.Clone(), nil
}

// contentID extracts the id of a save payload; "" means insert.
func contentID(content core.Document) (string, error) {
	raw, ok := content[core.KeyID]
	if !ok || raw == nil {
		return "", nil
	}
	id, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: id must be a string, got %T", core.ErrInvalidInput, raw)
	}
	return id, nil
}

// Delete removes the document with the given id. Unless bulk is set the
// snapshot is persisted immediately; in bulk mode the caller must Flush.
func (r *Repository) Delete(ctx context.Context, id string, bulk bool) error {
	if err := r.await(ctx); err != nil {
		return err
	}
	r.logger.Debug("deleting document", "id", id, "bulk", bulk)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writableLocked(); err != nil {
		return err
	}

	pos, ok := r.ix.Position(id)
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	doc, _ := r.ix.Get(id)
	r.ix.Remove(id)

	if bulk {
		return nil
	}
	if err := r.persistLocked(); err != nil {
		r.ix.InsertAt(pos, doc)
		return err
	}
	return nil
}

// Flush persists the in-memory state, completing any bulk deletes.
func (r *Repository) Flush(ctx context.Context) error {
	if err := r.await(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writableLocked(); err != nil {
		return err
	}
	return r.persistLocked()
}

// Types returns the number of documents per doc_type.
func (r *Repository) Types(ctx context.Context) (map[string]int, error) {
	if err := r.await(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ix.Types(), nil
}

var _ core.Repository = (*Repository)(nil)
var _ core.Readiness = (*Repository)(nil)
var _ core.Catalog = (*Repository)(nil)
