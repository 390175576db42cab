package driving

import (
	"context"

	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
)

// ImportResult carries everything one archive import produced.
type ImportResult struct {
	// Tree is the materialized folder hierarchy mirroring the archive.
	Tree []domain.TreeNode

	// Documents maps document id to the converted document.
	Documents map[string]*domain.KnowledgeDocument

	// Summary is the per-entry accounting for the run.
	Summary domain.ImportSummary
}

// Importer ingests an archive of documents into a knowledge base.
type Importer interface {
	// ImportArchive extracts, sanitizes, converts and arranges the archive
	// at path into baseID. Entry failures are recorded in the summary; only
	// an unreadable archive fails the run, with domain.ErrArchiveUnreadable.
	ImportArchive(ctx context.Context, baseID, path string) (*ImportResult, error)
}
