package driving

import "github.com/forlandeivan/search-engine-sub011/internal/core/domain"

// Chunker splits a document's markup into overlapping plain-text chunks.
type Chunker interface {
	// Chunk strips markup, normalizes whitespace and windows the text.
	// Empty or whitespace-only input yields an empty slice and no error.
	Chunk(doc *domain.KnowledgeDocument) ([]domain.DocumentChunk, error)

	// PlainText returns the stripped, normalized text a document chunks
	// over, for offset-based consumers.
	PlainText(markup string) string
}
