package driven

import (
	"context"
	"errors"

	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
)

// UpsertResult reports the outcome of one chunk batch upsert.
type UpsertResult struct {
	// RecordIDs are the identifiers of the stored records, in chunk order.
	RecordIDs []string

	// TokensUsed is the embedding token count charged for the batch.
	TokensUsed int
}

// VectorService stores chunk embeddings in named collections.
type VectorService interface {
	// EnsureCollection creates the collection when absent. Creating an
	// existing collection with the same dimensions is a no-op.
	EnsureCollection(ctx context.Context, name string, dimensions int) error

	// UpsertChunks embeds and stores one document's chunks. The call is
	// atomic per batch: on error no partial records remain.
	UpsertChunks(ctx context.Context, collection, providerID string, chunks []domain.DocumentChunk) (*UpsertResult, error)

	// CountPoints returns the number of records in the collection.
	CountPoints(ctx context.Context, collection string) (int, error)

	// DeleteRecords removes the records with the given identifiers. Missing
	// identifiers are ignored.
	DeleteRecords(ctx context.Context, collection string, recordIDs []string) error
}

// VectorError wraps a vector service failure with a transience marker. The
// indexing controller retries transient failures and treats the rest as
// document-level or job-level faults.
type VectorError struct {
	Err       error
	Transient bool
}

func (e *VectorError) Error() string {
	return e.Err.Error()
}

func (e *VectorError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether the error carries a transient vector failure.
func IsTransient(err error) bool {
	var ve *VectorError
	return errors.As(err, &ve) && ve.Transient
}
