package driving

import (
	"context"

	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
)

// ConvertResult is the normalized output of one document conversion.
type ConvertResult struct {
	// Title is the extracted document title, synthesized from the filename
	// when the content carries none.
	Title string

	// Markup is the normalized markup content.
	Markup string

	// Format is the resolved input format.
	Format domain.DocumentFormat
}

// Converter turns a raw file into normalized markup.
type Converter interface {
	// Convert resolves the format from the filename, cross-checks the
	// content signature and produces markup. Failures map to
	// domain.ErrUnsupportedType, domain.ErrFormatMismatch,
	// domain.ErrConversionFailed or domain.ErrEmptyDocument.
	Convert(ctx context.Context, filename string, data []byte) (*ConvertResult, error)

	// Supported reports whether the filename's extension is convertible.
	Supported(filename string) bool
}
