package typed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/jsonvault/pkg/core"
)

// DocumentModel is a typed view of a core.Document.
// Data holds every field except the reserved id and doc_type.
type DocumentModel[T any] struct {
	ID    string
	Type  string
	Data  T
	Saver Saver[T] // Active Record reference
}

// Saver avoids tight coupling between models and the service that stores them.
type Saver[T any] interface {
	Save(ctx context.Context, doc *DocumentModel[T]) error
}

// Save persists the document using the attached saver.
func (d *DocumentModel[T]) Save(ctx context.Context) error {
	if d.Saver == nil {
		return fmt.Errorf("document is detached (missing Saver)")
	}
	return d.Saver.Save(ctx, d)
}

// toCore converts the typed data into a save payload.
func toCore[T any](doc *DocumentModel[T]) (core.Document, error) {
	dataBytes, err := json.Marshal(doc.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal typed data: %w", err)
	}

	var payload core.Document
	if err := json.Unmarshal(dataBytes, &payload); err != nil {
		return nil, fmt.Errorf("%w: typed data must encode as a JSON object: %v", core.ErrInvalidInput, err)
	}
	if payload == nil {
		payload = core.Document{}
	}

	delete(payload, core.KeyType)
	delete(payload, core.KeyID)
	if doc.ID != "" {
		payload[core.KeyID] = doc.ID
	}
	return payload, nil
}

// fromCore converts a stored document into the typed model.
func fromCore[T any](coreDoc core.Document, saver Saver[T]) (*DocumentModel[T], error) {
	dataBytes, err := json.Marshal(coreDoc)
	if err != nil {
		return nil, fmt.Errorf("document marshal failed: %w", err)
	}

	var data T
	if err := json.Unmarshal(dataBytes, &data); err != nil {
		return nil, fmt.Errorf("unmarshal to target type failed: %w", err)
	}

	return &DocumentModel[T]{
		ID:    coreDoc.ID(),
		Type:  coreDoc.Type(),
		Data:  data,
		Saver: saver,
	}, nil
}
