package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/forlandeivan/search-engine-sub011/internal/converters/markup"
	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driven"
)

// Ensure Converter implements the interface.
var _ driven.FormatConverter = (*Converter)(nil)

// Converter handles PDF documents.
type Converter struct{}

// New creates a new PDF converter.
func New() *Converter {
	return &Converter{}
}

// Formats returns the formats this converter handles.
func (c *Converter) Formats() []domain.DocumentFormat {
	return []domain.DocumentFormat{domain.FormatPDF}
}

// Convert extracts page text in page order. Pages that fail text extraction
// are skipped; the document fails only when no page yields text.
func (c *Converter) Convert(_ context.Context, filename string, data []byte) (result *driven.FormatResult, err error) {
	// The underlying parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: parse pdf: %v", domain.ErrConversionFailed, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %v", domain.ErrConversionFailed, err)
	}

	var fragments []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		fragments = append(fragments, markup.Paragraphs(text))
	}
	if len(fragments) == 0 {
		return nil, fmt.Errorf("%w: no extractable text", domain.ErrConversionFailed)
	}

	return &driven.FormatResult{
		Markup: markup.Join(fragments...),
	}, nil
}
