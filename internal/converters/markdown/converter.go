package markdown

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/forlandeivan/search-engine-sub011/internal/converters/textenc"
	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driven"
)

// Ensure Converter implements the interface.
var _ driven.FormatConverter = (*Converter)(nil)

// Converter handles Markdown documents.
type Converter struct {
	md goldmark.Markdown
}

// New creates a new Markdown converter.
func New() *Converter {
	return &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
	}
}

// Formats returns the formats this converter handles.
func (c *Converter) Formats() []domain.DocumentFormat {
	return []domain.DocumentFormat{domain.FormatMarkdown}
}

// Convert renders the markdown source to markup. The title comes from the
// first top-level heading when present.
func (c *Converter) Convert(_ context.Context, filename string, data []byte) (*driven.FormatResult, error) {
	source := textenc.Decode(data)

	var buf bytes.Buffer
	if err := c.md.Convert([]byte(source), &buf); err != nil {
		return nil, fmt.Errorf("%w: render markdown: %v", domain.ErrConversionFailed, err)
	}

	return &driven.FormatResult{
		Title:  extractMarkdownTitle(source),
		Markup: strings.TrimSpace(buf.String()),
	}, nil
}

var headingLine = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// extractMarkdownTitle returns the first level-one heading, if any.
func extractMarkdownTitle(source string) string {
	m := headingLine.FindStringSubmatch(source)
	if len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}
