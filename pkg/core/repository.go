package core

import "context"

// Repository defines the contract for storing and retrieving documents.
// Adhering to this interface allows the core to be independent of the
// underlying storage mechanism.
type Repository interface {
	// Find returns every document of docType satisfying all filters.
	// It never returns a nil slice on success.
	Find(ctx context.Context, docType string, filters []Filter) ([]Document, error)

	// Get retrieves a document by its ID.
	Get(ctx context.Context, id string) (Document, error)

	// Save inserts content as a new document of docType when it carries no id,
	// or merges it onto the existing document otherwise.
	Save(ctx context.Context, docType string, content Document) (Document, error)

	// Delete removes a document by its ID. In bulk mode the change is kept in
	// memory until Flush is called.
	Delete(ctx context.Context, id string, bulk bool) error

	// Flush persists the current in-memory state.
	Flush(ctx context.Context) error
}

// Readiness is implemented by repositories that load their state in the background.
type Readiness interface {
	// Ready is closed once the repository finished loading.
	Ready() <-chan struct{}

	// WaitReady blocks until loading finished and returns the load error, if any.
	WaitReady(ctx context.Context) error
}

// Catalog is implemented by repositories able to enumerate what they store.
type Catalog interface {
	// Types returns the number of documents per doc_type.
	Types(ctx context.Context) (map[string]int, error)
}
