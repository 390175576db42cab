package driving

import (
	"context"

	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
)

// IndexingParams configures one indexing run.
type IndexingParams struct {
	// Collection is the target vector collection name.
	Collection string

	// ProviderID identifies the vector-service provider.
	ProviderID string

	// Dimensions is the embedding dimensionality.
	Dimensions int

	// ChunkSize and ChunkOverlap override the configured chunking defaults
	// when positive.
	ChunkSize    int
	ChunkOverlap int

	// DocumentIDs restricts the run to the listed documents. Empty means
	// the whole base.
	DocumentIDs []string
}

// IndexingController runs and steers indexing actions over a knowledge base.
type IndexingController interface {
	// Start creates a new action for the base and begins processing in the
	// background. Returns the created action.
	Start(ctx context.Context, baseID string, params IndexingParams) (*domain.IndexingAction, error)

	// Pause requests suspension at the next checkpoint.
	Pause(ctx context.Context, actionID string) error

	// Resume continues a paused action from its frozen position.
	Resume(ctx context.Context, actionID string) error

	// Cancel terminally stops the action at the next checkpoint. When
	// deleteIndexedData is set, records written during the run are removed
	// from the vector store before the action settles.
	Cancel(ctx context.Context, actionID string, deleteIndexedData bool) error

	// Status returns the current action state.
	Status(ctx context.Context, actionID string) (*domain.IndexingAction, error)

	// List returns the base's actions, newest first.
	List(ctx context.Context, baseID string) ([]*domain.IndexingAction, error)
}
