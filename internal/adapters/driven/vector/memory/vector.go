// Package memory provides an in-process vector service. Embeddings are not
// computed; records carry the chunk text so the rest of the pipeline can be
// exercised without a vector database.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driven"
)

// Ensure Service implements the interface.
var _ driven.VectorService = (*Service)(nil)

type record struct {
	documentID string
	text       string
}

type collection struct {
	dimensions int
	records    map[string]record
}

// Service is an in-memory vector store.
type Service struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// New creates an empty vector service.
func New() *Service {
	return &Service{collections: make(map[string]*collection)}
}

// EnsureCollection creates the collection when absent. Re-creating with
// different dimensions is rejected.
func (s *Service) EnsureCollection(_ context.Context, name string, dimensions int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.collections[name]; ok {
		if c.dimensions != dimensions {
			return &driven.VectorError{
				Err: fmt.Errorf("collection %s has %d dimensions, requested %d", name, c.dimensions, dimensions),
			}
		}
		return nil
	}
	s.collections[name] = &collection{
		dimensions: dimensions,
		records:    make(map[string]record),
	}
	return nil
}

// UpsertChunks stores one document's chunks. Record ids reuse the chunk ids,
// so re-indexing the same document replaces its records.
func (s *Service) UpsertChunks(_ context.Context, collectionName, _ string, chunks []domain.DocumentChunk) (*driven.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[collectionName]
	if !ok {
		return nil, &driven.VectorError{
			Err: fmt.Errorf("%w: collection %s", domain.ErrNotFound, collectionName),
		}
	}

	ids := make([]string, len(chunks))
	tokens := 0
	for i, chunk := range chunks {
		c.records[chunk.ID] = record{documentID: chunk.DocumentID, text: chunk.Text}
		ids[i] = chunk.ID
		tokens += len(strings.Fields(chunk.Text))
	}
	return &driven.UpsertResult{RecordIDs: ids, TokensUsed: tokens}, nil
}

// CountPoints returns the number of records in the collection.
func (s *Service) CountPoints(_ context.Context, name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return 0, &driven.VectorError{
			Err: fmt.Errorf("%w: collection %s", domain.ErrNotFound, name),
		}
	}
	return len(c.records), nil
}

// DeleteRecords removes the records with the given ids.
func (s *Service) DeleteRecords(_ context.Context, name string, recordIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return nil
	}
	for _, id := range recordIDs {
		delete(c.records, id)
	}
	return nil
}
