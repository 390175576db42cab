package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore keeps knowledge documents in memory.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]domain.KnowledgeDocument
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]domain.KnowledgeDocument)}
}

// SaveDocument inserts or replaces the document by ID.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.KnowledgeDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = *doc
	return nil
}

// GetDocument returns the document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.KnowledgeDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}
	return &doc, nil
}

// ListDocumentsByBase returns the base's documents ordered by title.
func (s *DocumentStore) ListDocumentsByBase(_ context.Context, baseID string) ([]*domain.KnowledgeDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.KnowledgeDocument
	for _, doc := range s.docs {
		if doc.BaseID != baseID {
			continue
		}
		d := doc
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// SetVectorization replaces the document's vectorization record.
func (s *DocumentStore) SetVectorization(_ context.Context, documentID string, v *domain.KnowledgeDocumentVectorization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[documentID]
	if !ok {
		return fmt.Errorf("%w: document %s", domain.ErrNotFound, documentID)
	}
	doc.Vectorization = v
	s.docs[documentID] = doc
	return nil
}

// DeleteDocument removes the document. Missing IDs are ignored.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}
