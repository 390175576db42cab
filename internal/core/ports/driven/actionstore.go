package driven

import (
	"context"

	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
)

// ActionStore persists indexing actions.
type ActionStore interface {
	// CreateAction stores a new action. An existing ID is rejected with
	// domain.ErrAlreadyExists.
	CreateAction(ctx context.Context, action *domain.IndexingAction) error

	// GetAction returns the action by ID, or domain.ErrNotFound.
	GetAction(ctx context.Context, id string) (*domain.IndexingAction, error)

	// ListActionsByBase returns the base's actions, newest first.
	ListActionsByBase(ctx context.Context, baseID string) ([]*domain.IndexingAction, error)

	// UpdateAction replaces the stored action. A missing ID is rejected with
	// domain.ErrNotFound.
	UpdateAction(ctx context.Context, action *domain.IndexingAction) error
}
