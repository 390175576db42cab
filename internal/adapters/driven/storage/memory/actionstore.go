// Package memory provides in-memory stores for documents and indexing
// actions. Used in tests and for ephemeral runs without a database file.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driven"
)

// Ensure ActionStore implements the interface.
var _ driven.ActionStore = (*ActionStore)(nil)

// ActionStore keeps indexing actions in memory.
type ActionStore struct {
	mu      sync.RWMutex
	actions map[string]domain.IndexingAction
}

// NewActionStore creates an empty action store.
func NewActionStore() *ActionStore {
	return &ActionStore{actions: make(map[string]domain.IndexingAction)}
}

// CreateAction stores a new action.
func (s *ActionStore) CreateAction(_ context.Context, action *domain.IndexingAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.actions[action.ID]; ok {
		return fmt.Errorf("%w: action %s", domain.ErrAlreadyExists, action.ID)
	}
	s.actions[action.ID] = *action
	return nil
}

// GetAction returns the action by ID.
func (s *ActionStore) GetAction(_ context.Context, id string) (*domain.IndexingAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	action, ok := s.actions[id]
	if !ok {
		return nil, fmt.Errorf("%w: action %s", domain.ErrNotFound, id)
	}
	return &action, nil
}

// ListActionsByBase returns the base's actions, newest first.
func (s *ActionStore) ListActionsByBase(_ context.Context, baseID string) ([]*domain.IndexingAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.IndexingAction
	for _, action := range s.actions {
		if action.BaseID != baseID {
			continue
		}
		a := action
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateAction replaces the stored action.
func (s *ActionStore) UpdateAction(_ context.Context, action *domain.IndexingAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.actions[action.ID]; !ok {
		return fmt.Errorf("%w: action %s", domain.ErrNotFound, action.ID)
	}
	s.actions[action.ID] = *action
	return nil
}
