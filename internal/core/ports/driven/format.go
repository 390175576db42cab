package driven

import (
	"context"

	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
)

// FormatResult is the output of one format-specific conversion.
type FormatResult struct {
	// Title is the extracted title, empty when the content carries none.
	Title string

	// Markup is the normalized markup content.
	Markup string
}

// FormatConverter converts one document format into normalized markup.
// Converters are registered with the conversion service by format.
type FormatConverter interface {
	// Formats returns the formats this converter handles.
	Formats() []domain.DocumentFormat

	// Convert produces markup from the raw file bytes. Unreadable content is
	// reported with domain.ErrConversionFailed.
	Convert(ctx context.Context, filename string, data []byte) (*FormatResult, error)
}
