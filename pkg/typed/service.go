package typed

import (
	"context"
	"fmt"

	"github.com/aretw0/jsonvault/pkg/core"
)

// Service binds a Go type to one document type of a core.Service.
type Service[T any] struct {
	svc     *core.Service
	docType string
}

// NewService creates a typed collection for docType.
func NewService[T any](svc *core.Service, docType string) *Service[T] {
	return &Service[T]{svc: svc, docType: docType}
}

// DocType returns the document type this service is bound to.
func (s *Service[T]) DocType() string {
	return s.docType
}

// Save inserts the document when doc.ID is empty, or updates it otherwise.
// On success doc.ID, doc.Type and doc.Data reflect the stored document.
func (s *Service[T]) Save(ctx context.Context, doc *DocumentModel[T]) error {
	payload, err := toCore(doc)
	if err != nil {
		return err
	}

	stored, err := s.svc.Save(ctx, s.docType, payload)
	if err != nil {
		return err
	}

	model, err := fromCore(stored, Saver[T](s))
	if err != nil {
		return err
	}
	*doc = *model
	return nil
}

// Get retrieves a document of this service's type.
func (s *Service[T]) Get(ctx context.Context, id string) (*DocumentModel[T], error) {
	coreDoc, err := s.svc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if coreDoc.Type() != s.docType {
		return nil, fmt.Errorf("%w: %s is not a %s", core.ErrNotFound, id, s.docType)
	}
	return fromCore(coreDoc, Saver[T](s))
}

// Find returns the documents matching every filter.
func (s *Service[T]) Find(ctx context.Context, filters ...core.Filter) ([]*DocumentModel[T], error) {
	coreDocs, err := s.svc.Find(ctx, s.docType, filters)
	if err != nil {
		return nil, err
	}

	result := make([]*DocumentModel[T], 0, len(coreDocs))
	for _, d := range coreDocs {
		model, err := fromCore(d, Saver[T](s))
		if err != nil {
			return nil, fmt.Errorf("failed to process document %s: %w", d.ID(), err)
		}
		result = append(result, model)
	}
	return result, nil
}

// Delete removes a document of this service's type.
func (s *Service[T]) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.svc.Delete(ctx, id)
}

// DeleteWhere removes every document matching the filters.
func (s *Service[T]) DeleteWhere(ctx context.Context, filters ...core.Filter) error {
	return s.svc.DeleteByCriteria(ctx, s.docType, filters)
}
