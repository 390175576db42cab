package msword

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf16"

	"code.sajari.com/docconv"

	"github.com/forlandeivan/search-engine-sub011/internal/converters/markup"
	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driven"
	"github.com/forlandeivan/search-engine-sub011/internal/logger"
)

// Ensure Converter implements the interface.
var _ driven.FormatConverter = (*Converter)(nil)

const mimeWord = "application/msword"

// minScrapeLen is the minimum text a byte scrape must recover before it is
// trusted over a remote conversion attempt.
const minScrapeLen = 64

// Step attempts one extraction strategy. It returns the recovered markup
// and whether the attempt should be trusted.
type Step func(ctx context.Context, filename string, data []byte) (string, bool)

// Converter handles legacy binary Word documents. Extraction walks an
// ordered chain of steps and keeps the first trusted result. The default
// chain tries local structured extraction, then the remote conversion
// service when one is configured, then a printable-run byte scrape.
type Converter struct {
	chain []Step
}

// Option configures the converter.
type Option func(*Converter)

// WithChain replaces the default extraction chain.
func WithChain(steps ...Step) Option {
	return func(c *Converter) {
		c.chain = steps
	}
}

// New creates a new legacy Word converter. remote may be nil.
func New(remote driven.RemoteConverter, opts ...Option) *Converter {
	c := &Converter{chain: []Step{LocalStep, RemoteStep(remote), ScrapeStep}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Formats returns the formats this converter handles.
func (c *Converter) Formats() []domain.DocumentFormat {
	return []domain.DocumentFormat{domain.FormatDoc}
}

// Convert runs the extraction chain and keeps the first trusted result.
func (c *Converter) Convert(ctx context.Context, filename string, data []byte) (*driven.FormatResult, error) {
	for _, step := range c.chain {
		if step == nil {
			continue
		}
		if m, ok := step(ctx, filename, data); ok {
			return &driven.FormatResult{Markup: m}, nil
		}
	}
	return nil, fmt.Errorf("%w: no extractable text in legacy document", domain.ErrConversionFailed)
}

// LocalStep extracts through the structured local tool chain.
func LocalStep(_ context.Context, _ string, data []byte) (string, bool) {
	text := convertLocal(data)
	if text == "" {
		return "", false
	}
	return markup.Paragraphs(text), true
}

// RemoteStep delegates to the remote conversion service. A service outage
// is a failed attempt for this document, never retried here. A nil remote
// yields a step that always declines.
func RemoteStep(remote driven.RemoteConverter) Step {
	return func(ctx context.Context, filename string, data []byte) (string, bool) {
		if remote == nil {
			return "", false
		}
		html, err := remote.ConvertToHTML(ctx, filename, data)
		if err != nil {
			logger.Warn("remote conversion of %s failed: %v", filename, err)
			return "", false
		}
		html = strings.TrimSpace(html)
		return html, html != ""
	}
}

// ScrapeStep recovers printable runs straight from the bytes. Short
// recoveries are rejected as noise.
func ScrapeStep(_ context.Context, _ string, data []byte) (string, bool) {
	text := scrapeText(data)
	if len(text) < minScrapeLen {
		return "", false
	}
	return markup.Paragraphs(text), true
}

// convertLocal attempts structured extraction. The underlying tool chain is
// environment-dependent, so any failure just moves the chain along.
func convertLocal(data []byte) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()
	res, err := docconv.Convert(bytes.NewReader(data), mimeWord, true)
	if err != nil || res == nil {
		return ""
	}
	return strings.TrimSpace(res.Body)
}

// scrapeText recovers printable character runs from the raw bytes, trying
// both single-byte and UTF-16LE interpretations and keeping the longer
// recovery.
func scrapeText(data []byte) string {
	single := scrapeSingleByte(data)
	wide := scrapeUTF16LE(data)
	if len(wide) > len(single) {
		return wide
	}
	return single
}

func scrapeSingleByte(data []byte) string {
	var runs []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() >= 4 {
			runs = append(runs, cur.String())
		}
		cur.Reset()
	}
	for _, b := range data {
		if b >= 0x20 && b < 0x7F || b == '\n' || b == '\t' {
			cur.WriteByte(b)
			continue
		}
		flush()
	}
	flush()
	return strings.TrimSpace(strings.Join(runs, "\n"))
}

func scrapeUTF16LE(data []byte) string {
	if len(data) < 2 {
		return ""
	}
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		units = append(units, uint16(data[i])|uint16(data[i+1])<<8)
	}
	var runs []string
	var cur []rune
	flush := func() {
		if len(cur) >= 4 {
			runs = append(runs, string(cur))
		}
		cur = cur[:0]
	}
	for _, r := range utf16.Decode(units) {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			cur = append(cur, r)
			continue
		}
		flush()
	}
	flush()
	return strings.TrimSpace(strings.Join(runs, "\n"))
}
