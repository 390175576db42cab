package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// KnowledgeDocument is a normalized document inside a knowledge base.
// Created when a file is successfully converted; mutated on content edit
// or re-vectorization; deleted when its owning tree node is removed.
type KnowledgeDocument struct {
	// ID is the unique identifier for the document.
	ID string `json:"id"`

	// BaseID links to the owning knowledge base.
	BaseID string `json:"base_id"`

	// Title is the human-readable title.
	Title string `json:"title"`

	// Markup is the normalized markup content produced by conversion.
	Markup string `json:"markup"`

	// SourcePath is the sanitized archive path the document came from,
	// empty for documents created directly.
	SourcePath string `json:"source_path,omitempty"`

	// UpdatedAt is when the content last changed.
	UpdatedAt time.Time `json:"updated_at"`

	// Vectorization is present only after a successful indexing pass.
	// It is replaced wholesale on re-indexing, never partially patched.
	Vectorization *KnowledgeDocumentVectorization `json:"vectorization,omitempty"`
}

// KnowledgeDocumentVectorization is the durable link between a document and
// the vector-store records produced from its chunks.
type KnowledgeDocumentVectorization struct {
	// Collection is the vector-store partition the records live in.
	Collection string `json:"collection"`

	// ProviderID identifies the owning vector-service provider.
	ProviderID string `json:"provider_id"`

	// Dimensions is the vector dimensionality.
	Dimensions int `json:"dimensions"`

	// ChunkSize and ChunkOverlap are the chunking parameters used.
	ChunkSize    int `json:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap"`

	// RecordIDs are the vector-store record ids written for this document.
	RecordIDs []string `json:"record_ids"`

	// PointCount is the number of points written.
	PointCount int `json:"point_count"`

	// TotalTokens is the token usage reported by the embedding provider,
	// zero when the provider does not report usage.
	TotalTokens int `json:"total_tokens,omitempty"`

	// CreatedAt is when this indexing pass completed.
	CreatedAt time.Time `json:"created_at"`
}

// DocumentChunk is a bounded, overlapping substring of a document's
// normalized plain text, the unit handed to the embedding service.
// Chunks are produced fresh on every chunking pass and are not persisted
// outside a vectorization record's id list.
type DocumentChunk struct {
	// ID is derived deterministically from the owning document id and the
	// zero-based chunk index. See ChunkID.
	ID string `json:"id"`

	// DocumentID links to the owning document.
	DocumentID string `json:"document_id"`

	// Index is the zero-based position within the document.
	Index int `json:"index"`

	// Start and End are character offsets into the trimmed normalized plain
	// text of the document, so chunk-replacement operations stay precise.
	Start int `json:"start"`
	End   int `json:"end"`

	// CharCount and WordCount describe the chunk text.
	CharCount int `json:"char_count"`
	WordCount int `json:"word_count"`

	// Excerpt is the first ~200 normalized characters, ellipsis-suffixed
	// when truncated.
	Excerpt string `json:"excerpt"`

	// Text is the full chunk text.
	Text string `json:"text"`
}

// ChunkID derives a stable chunk identifier from the owning document id and
// the zero-based chunk index. Re-running the chunker on unchanged input
// yields identical ids.
func ChunkID(documentID string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(documentID+"/"+strconv.Itoa(index))).String()
}
