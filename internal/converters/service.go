// Package converters turns raw files into normalized markup documents.
// A registry maps each supported format to its converter; the service
// resolves the format from the filename, cross-checks the content signature
// and dispatches.
package converters

import (
	"context"
	"fmt"
	"strings"

	"github.com/forlandeivan/search-engine-sub011/internal/converters/csv"
	"github.com/forlandeivan/search-engine-sub011/internal/converters/docx"
	"github.com/forlandeivan/search-engine-sub011/internal/converters/eml"
	"github.com/forlandeivan/search-engine-sub011/internal/converters/html"
	"github.com/forlandeivan/search-engine-sub011/internal/converters/markdown"
	"github.com/forlandeivan/search-engine-sub011/internal/converters/markup"
	"github.com/forlandeivan/search-engine-sub011/internal/converters/msword"
	"github.com/forlandeivan/search-engine-sub011/internal/converters/pdf"
	"github.com/forlandeivan/search-engine-sub011/internal/converters/plaintext"
	"github.com/forlandeivan/search-engine-sub011/internal/converters/pptx"
	"github.com/forlandeivan/search-engine-sub011/internal/converters/xlsx"
	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driven"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driving"
	"github.com/forlandeivan/search-engine-sub011/internal/logger"
)

// Ensure Service implements the interface.
var _ driving.Converter = (*Service)(nil)

// Service dispatches conversions to format-specific converters.
type Service struct {
	byFormat map[domain.DocumentFormat]driven.FormatConverter
}

// New creates a conversion service with the given converters registered.
func New(converters ...driven.FormatConverter) *Service {
	s := &Service{byFormat: make(map[domain.DocumentFormat]driven.FormatConverter)}
	for _, c := range converters {
		for _, f := range c.Formats() {
			s.byFormat[f] = c
		}
	}
	return s
}

// NewDefault creates a service with every built-in converter registered.
// remote may be nil; it only affects legacy Word documents.
func NewDefault(remote driven.RemoteConverter) *Service {
	return New(
		pdf.New(),
		docx.New(),
		pptx.New(),
		xlsx.New(),
		msword.New(remote),
		markdown.New(),
		plaintext.New(),
		csv.New(),
		eml.New(),
		html.New(),
	)
}

// Supported reports whether the filename's extension is convertible.
func (s *Service) Supported(filename string) bool {
	_, ok := s.byFormat[domain.FormatForFilename(filename)]
	return ok
}

// Convert resolves the format, validates the content signature and runs the
// registered converter. A document that converts to no text is rejected
// with domain.ErrEmptyDocument; a missing title is synthesized from the
// filename.
func (s *Service) Convert(ctx context.Context, filename string, data []byte) (*driving.ConvertResult, error) {
	format := domain.FormatForFilename(filename)
	conv, ok := s.byFormat[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, filename)
	}

	if err := format.CheckSignature(data); err != nil {
		return nil, fmt.Errorf("convert %s: %w", filename, err)
	}

	logger.Debug("converting %s as %s", filename, format)
	res, err := conv.Convert(ctx, filename, data)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(res.Markup) == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyDocument, filename)
	}

	title := strings.TrimSpace(res.Title)
	out := res.Markup
	if !strings.Contains(out, "<h1>") {
		// A document without a top-level heading gets one synthesized
		// from the filename, and that heading becomes the title.
		title = markup.TitleFromFilename(filename)
		out = markup.Join(markup.Heading(1, title), out)
	}
	if title == "" {
		title = markup.TitleFromFilename(filename)
	}

	return &driving.ConvertResult{
		Title:  title,
		Markup: out,
		Format: format,
	}, nil
}
