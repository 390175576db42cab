package html

import (
	"context"
	gohtml "html"
	"regexp"
	"strings"

	"github.com/forlandeivan/search-engine-sub011/internal/converters/markup"
	"github.com/forlandeivan/search-engine-sub011/internal/converters/textenc"
	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driven"
)

// Ensure Converter implements the interface.
var _ driven.FormatConverter = (*Converter)(nil)

// Converter handles HTML documents.
type Converter struct{}

// New creates a new HTML converter.
func New() *Converter {
	return &Converter{}
}

// Formats returns the formats this converter handles.
func (c *Converter) Formats() []domain.DocumentFormat {
	return []domain.DocumentFormat{domain.FormatHTML}
}

// Pre-compiled regular expressions for HTML parsing performance.
var (
	titleTag          = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	scriptTag         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag       = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag           = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag            = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	htmlComments      = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements     = regexp.MustCompile(`(?i)</(p|div|br|hr|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	openBlockElements = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	brTags            = regexp.MustCompile(`(?i)<br\s*/?>`)
	hrTags            = regexp.MustCompile(`(?i)<hr\s*/?>`)
	allTags           = regexp.MustCompile(`<[^>]+>`)
	multiSpaces       = regexp.MustCompile(`[ \t]+`)
	multiNewlines     = regexp.MustCompile(`\n{3,}`)
)

// Convert extracts readable text from the page and re-renders it as
// normalized paragraphs. Scripts, styles and the head are dropped.
func (c *Converter) Convert(_ context.Context, filename string, data []byte) (*driven.FormatResult, error) {
	content := textenc.Decode(data)

	return &driven.FormatResult{
		Title:  extractHTMLTitle(content),
		Markup: markup.Paragraphs(stripHTML(content)),
	}, nil
}

// extractHTMLTitle extracts a title from the <title> tag, if any.
func extractHTMLTitle(content string) string {
	matches := titleTag.FindStringSubmatch(content)
	if len(matches) > 1 {
		return strings.TrimSpace(gohtml.UnescapeString(matches[1]))
	}
	return ""
}

// stripHTML removes HTML tags and extracts readable text content, block
// boundaries becoming blank lines.
func stripHTML(content string) string {
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = noscriptTag.ReplaceAllString(content, "")
	content = headTag.ReplaceAllString(content, "")
	content = svgTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")

	content = openBlockElements.ReplaceAllString(content, "\n\n")
	content = blockElements.ReplaceAllString(content, "\n\n")
	content = brTags.ReplaceAllString(content, "\n")
	content = hrTags.ReplaceAllString(content, "\n\n")

	content = allTags.ReplaceAllString(content, "")
	content = gohtml.UnescapeString(content)

	content = multiSpaces.ReplaceAllString(content, " ")
	content = multiNewlines.ReplaceAllString(content, "\n\n")

	lines := strings.Split(content, "\n")
	trimmed := make([]string, len(lines))
	for i, line := range lines {
		trimmed[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(trimmed, "\n"))
}
