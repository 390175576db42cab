package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Conversion Errors.

	// ErrUnsupportedType indicates a file extension no converter handles.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmptyDocument indicates conversion succeeded but produced no text.
	ErrEmptyDocument = errors.New("empty document")

	// ErrConversionFailed indicates the converter could not read the content.
	ErrConversionFailed = errors.New("cannot read content")

	// ErrFormatMismatch indicates content whose signature does not match the
	// format implied by the file extension.
	ErrFormatMismatch = errors.New("content does not match extension")

	// Archive Errors.

	// ErrArchiveUnreadable indicates no backend could open the container.
	// Fatal to the whole import run.
	ErrArchiveUnreadable = errors.New("cannot open archive")

	// ErrInvalidPath indicates an archive entry path that escapes the
	// archive root (absolute, drive-prefixed, or containing "..").
	ErrInvalidPath = errors.New("invalid path")

	// Indexing Errors.

	// ErrActionTerminal indicates a control operation issued against an
	// action already in a terminal status.
	ErrActionTerminal = errors.New("action is terminal")

	// ErrInvalidTransition indicates a status or stage transition the state
	// machine does not permit.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrVectorUnavailable indicates the vector service failed past the
	// retry budget. Fatal to the current indexing run.
	ErrVectorUnavailable = errors.New("vector service unavailable")
)
