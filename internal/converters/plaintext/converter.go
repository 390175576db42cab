package plaintext

import (
	"context"

	"github.com/forlandeivan/search-engine-sub011/internal/converters/markup"
	"github.com/forlandeivan/search-engine-sub011/internal/converters/textenc"
	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driven"
)

// Ensure Converter implements the interface.
var _ driven.FormatConverter = (*Converter)(nil)

// Converter handles plain text documents.
type Converter struct{}

// New creates a new plain text converter.
func New() *Converter {
	return &Converter{}
}

// Formats returns the formats this converter handles.
func (c *Converter) Formats() []domain.DocumentFormat {
	return []domain.DocumentFormat{domain.FormatPlainText}
}

// Convert decodes the text and renders blank-line separated blocks as
// paragraphs. The title is left empty; the dispatch layer synthesizes one
// from the filename.
func (c *Converter) Convert(_ context.Context, filename string, data []byte) (*driven.FormatResult, error) {
	return &driven.FormatResult{
		Markup: markup.Paragraphs(textenc.Decode(data)),
	}, nil
}
