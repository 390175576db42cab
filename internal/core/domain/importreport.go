package domain

import "time"

// ImportErrorCode classifies why an archive entry was skipped.
type ImportErrorCode string

const (
	// ImportErrInvalidPath marks entries whose path escapes the archive root.
	ImportErrInvalidPath ImportErrorCode = "invalid_path"

	// ImportErrUnsupportedType marks entries with an extension outside the
	// converter allow-list.
	ImportErrUnsupportedType ImportErrorCode = "unsupported_type"

	// ImportErrFailedConversion marks entries the converter could not read.
	ImportErrFailedConversion ImportErrorCode = "failed_conversion"

	// ImportErrEmptyDocument marks entries that converted to no text.
	ImportErrEmptyDocument ImportErrorCode = "empty_document"

	// ImportErrDuplicatePath marks repeated occurrences of a normalized path.
	ImportErrDuplicatePath ImportErrorCode = "duplicate_path"
)

// ImportError records one skipped archive entry. Entry-level errors are
// accumulated, never raised as a fatal fault: one bad entry must not abort
// the rest of the archive.
type ImportError struct {
	// Path is the entry path as found in the archive.
	Path string `json:"path"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// Code classifies the failure.
	Code ImportErrorCode `json:"code"`
}

// ImportSummary is the immutable record produced once at the end of an
// import run, even when every entry failed.
type ImportSummary struct {
	// ArchiveName is the container file name.
	ArchiveName string `json:"archive_name"`

	// TotalFiles counts every file entry seen in the archive.
	TotalFiles int `json:"total_files"`

	// ImportedFiles counts entries that produced a document.
	ImportedFiles int `json:"imported_files"`

	// SkippedFiles counts entries recorded in Errors.
	SkippedFiles int `json:"skipped_files"`

	// Errors lists every skipped entry.
	Errors []ImportError `json:"errors"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
