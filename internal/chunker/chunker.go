// Package chunker provides fixed-size sliding-window chunking over a
// document's normalized plain text.
package chunker

import (
	"html"
	"regexp"
	"strings"

	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driving"
)

// Ensure Chunker implements the interface.
var _ driving.Chunker = (*Chunker)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// excerptLen bounds chunk excerpts.
const excerptLen = 200

// Chunker splits normalized document text into overlapping windows.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// Chunk strips the document's markup, normalizes whitespace and windows the
// resulting text. Offsets in the returned chunks index into the exact string
// PlainText returns for the same markup. Empty input yields no chunks.
func (c *Chunker) Chunk(doc *domain.KnowledgeDocument) ([]domain.DocumentChunk, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}

	text := c.PlainText(doc.Markup)
	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	total := len(runes)
	step := c.chunkSize - c.overlap
	if step < 1 {
		step = 1
	}

	chunks := make([]domain.DocumentChunk, 0, total/step+1)
	index := 0

	for start := 0; start < total; start += step {
		end := start + c.chunkSize
		if end > total {
			end = total
		}

		// Trim the window edges so offsets point at real content.
		lead, trail := start, end
		for lead < trail && isSpace(runes[lead]) {
			lead++
		}
		for trail > lead && isSpace(runes[trail-1]) {
			trail--
		}
		if lead == trail {
			if end == total {
				break
			}
			continue
		}

		chunkText := string(runes[lead:trail])
		chunks = append(chunks, domain.DocumentChunk{
			ID:         domain.ChunkID(doc.ID, index),
			DocumentID: doc.ID,
			Index:      index,
			Start:      lead,
			End:        trail,
			CharCount:  trail - lead,
			WordCount:  len(strings.Fields(chunkText)),
			Excerpt:    excerpt(chunkText),
			Text:       chunkText,
		})
		index++

		if end == total {
			break
		}
	}

	return chunks, nil
}

// Markup handling for text extraction. Block-level boundaries become
// paragraph breaks before tags are dropped.
var (
	closingBlocks = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|ul|ol|section|article)>`)
	openingBlocks = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|ul|ol|section|article)[^>]*>`)
	lineBreaks    = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	cellBreaks    = regexp.MustCompile(`(?i)</(td|th)>`)
	anyTag        = regexp.MustCompile(`<[^>]+>`)
	spaceRuns     = regexp.MustCompile(`[ \t]+`)
	newlineRuns   = regexp.MustCompile(`\n{2,}`)
)

// PlainText strips markup and normalizes whitespace. The same markup always
// yields the same string, so chunk offsets stay valid across runs.
func (c *Chunker) PlainText(source string) string {
	text := cellBreaks.ReplaceAllString(source, " ")
	text = closingBlocks.ReplaceAllString(text, "\n")
	text = openingBlocks.ReplaceAllString(text, "\n")
	text = lineBreaks.ReplaceAllString(text, "\n")
	text = anyTag.ReplaceAllString(text, "")
	text = html.UnescapeString(text)

	text = spaceRuns.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = newlineRuns.ReplaceAllString(text, "\n")

	return strings.TrimSpace(text)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t'
}

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptLen {
		return text
	}
	return string(runes[:excerptLen]) + "…"
}
