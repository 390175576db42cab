// Package domain contains the core entities of the knowledge ingestion
// pipeline: documents, chunks, the folder tree, import reports, and the
// indexing action state machine. It has no dependencies on adapters.
package domain
