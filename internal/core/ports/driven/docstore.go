package driven

import (
	"context"

	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
)

// DocumentStore persists knowledge documents and their vectorization records.
type DocumentStore interface {
	// SaveDocument inserts or replaces the document by ID.
	SaveDocument(ctx context.Context, doc *domain.KnowledgeDocument) error

	// GetDocument returns the document by ID, or domain.ErrNotFound.
	GetDocument(ctx context.Context, id string) (*domain.KnowledgeDocument, error)

	// ListDocumentsByBase returns the base's documents ordered by title.
	ListDocumentsByBase(ctx context.Context, baseID string) ([]*domain.KnowledgeDocument, error)

	// SetVectorization replaces the document's vectorization record wholesale.
	// A nil record clears it.
	SetVectorization(ctx context.Context, documentID string, v *domain.KnowledgeDocumentVectorization) error

	// DeleteDocument removes the document. Missing IDs are ignored.
	DeleteDocument(ctx context.Context, id string) error
}
