package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/forlandeivan/search-engine-sub011/internal/converters/docx"
	"github.com/forlandeivan/search-engine-sub011/internal/converters/markup"
	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driven"
)

// Ensure Converter implements the interface.
var _ driven.FormatConverter = (*Converter)(nil)

// Converter handles PPTX presentations.
type Converter struct{}

// New creates a new PPTX converter.
func New() *Converter {
	return &Converter{}
}

// Formats returns the formats this converter handles.
func (c *Converter) Formats() []domain.DocumentFormat {
	return []domain.DocumentFormat{domain.FormatPptx}
}

var slidePattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Convert extracts slide text in slide order. Each slide becomes a heading
// followed by its text paragraphs.
func (c *Converter) Convert(_ context.Context, filename string, data []byte) (*driven.FormatResult, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open pptx container: %v", domain.ErrConversionFailed, err)
	}

	type slide struct {
		number int
		file   *zip.File
	}
	var slides []slide
	for _, file := range reader.File {
		m := slidePattern.FindStringSubmatch(file.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slide{number: n, file: file})
	}
	if len(slides) == 0 {
		return nil, fmt.Errorf("%w: no slides found", domain.ErrConversionFailed)
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].number < slides[j].number })

	var fragments []string
	for _, s := range slides {
		rc, err := s.file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: read slide %d: %v", domain.ErrConversionFailed, s.number, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read slide %d: %v", domain.ErrConversionFailed, s.number, err)
		}

		paras := extractSlideText(content)
		if len(paras) == 0 {
			continue
		}
		fragments = append(fragments, markup.Heading(2, "Slide "+strconv.Itoa(s.number)))
		for _, p := range paras {
			fragments = append(fragments, markup.Paragraph(p))
		}
	}

	return &driven.FormatResult{
		Title:  docx.ExtractCoreTitle(reader),
		Markup: markup.Join(fragments...),
	}, nil
}

// slideXML captures the text runs of one slide. DrawingML nests runs inside
// shapes; decoding only the a:p/a:r/a:t chain is enough for text extraction.
type slideXML struct {
	Paragraphs []slideParagraph `xml:"cSld>spTree>sp>txBody>p"`
}

type slideParagraph struct {
	Runs []slideRun `xml:"r"`
}

type slideRun struct {
	Text string `xml:"t"`
}

func extractSlideText(content []byte) []string {
	var s slideXML
	if err := xml.Unmarshal(content, &s); err != nil {
		return nil
	}
	var out []string
	for _, p := range s.Paragraphs {
		var b strings.Builder
		for _, r := range p.Runs {
			b.WriteString(r.Text)
		}
		text := strings.TrimSpace(b.String())
		if text != "" {
			out = append(out, text)
		}
	}
	return out
}
