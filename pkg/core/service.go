package core

import (
	"context"
	"errors"
	"fmt"
)

// Service handles the business logic for documents.
type Service struct {
	repo Repository
}

// NewService creates a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Repository exposes the underlying storage adapter.
func (s *Service) Repository() Repository {
	return s.repo
}

// Find returns the documents of docType matching every filter.
func (s *Service) Find(ctx context.Context, docType string, filters []Filter) ([]Document, error) {
	if docType == "" {
		return nil, fmt.Errorf("%w: document type cannot be empty", ErrInvalidInput)
	}
	return s.repo.Find(ctx, docType, filters)
}

// Get retrieves a document.
func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: document ID cannot be empty", ErrInvalidInput)
	}
	return s.repo.Get(ctx, id)
}

// Save inserts or updates a document of docType.
func (s *Service) Save(ctx context.Context, docType string, content Document) (Document, error) {
	if docType == "" {
		return nil, fmt.Errorf("%w: document type cannot be empty", ErrInvalidInput)
	}
	if content == nil {
		return nil, fmt.Errorf("%w: document content cannot be nil", ErrInvalidInput)
	}
	return s.repo.Save(ctx, docType, content)
}

// Delete removes a document and persists the change.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: document ID cannot be empty", ErrInvalidInput)
	}
	return s.repo.Delete(ctx, id, false)
}

// DeleteByCriteria removes every document matched by Find in bulk mode and
// persists once at the end.
//
// If a single delete fails the operation fails. Entries already removed from
// memory are not restored; the final flush is still attempted so the file
// reflects memory.
func (s *Service) DeleteByCriteria(ctx context.Context, docType string, filters []Filter) error {
	docs, err := s.Find(ctx, docType, filters)
	if err != nil {
		return err
	}

	var errs []error
	for _, doc := range docs {
		if err := s.repo.Delete(ctx, doc.ID(), true); err != nil {
			errs = append(errs, err)
			break
		}
	}
	if err := s.repo.Flush(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Flush persists pending bulk changes.
func (s *Service) Flush(ctx context.Context) error {
	return s.repo.Flush(ctx)
}

// Ready returns a channel closed once the repository finished loading.
// Repositories without background loading are always ready.
func (s *Service) Ready() <-chan struct{} {
	if r, ok := s.repo.(Readiness); ok {
		return r.Ready()
	}
	ch := make(chan struct{})
	close(ch)
	return ch
}

// WaitReady blocks until the repository finished loading and returns the load error.
func (s *Service) WaitReady(ctx context.Context) error {
	if r, ok := s.repo.(Readiness); ok {
		return r.WaitReady(ctx)
	}
	return nil
}

// Types returns the number of documents per doc_type, or errors.ErrUnsupported
// when the repository cannot enumerate its content.
func (s *Service) Types(ctx context.Context) (map[string]int, error) {
	c, ok := s.repo.(Catalog)
	if !ok {
		return nil, fmt.Errorf("%T cannot list document types: %w", s.repo, errors.ErrUnsupported)
	}
	return c.Types(ctx)
}
