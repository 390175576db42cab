package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/forlandeivan/search-engine-sub011/internal/converters/markup"
	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driven"
)

// Ensure Converter implements the interface.
var _ driven.FormatConverter = (*Converter)(nil)

// Converter handles DOCX documents.
type Converter struct{}

// New creates a new DOCX converter.
func New() *Converter {
	return &Converter{}
}

// Formats returns the formats this converter handles.
func (c *Converter) Formats() []domain.DocumentFormat {
	return []domain.DocumentFormat{domain.FormatDocx}
}

// Convert extracts paragraphs and headings from word/document.xml.
func (c *Converter) Convert(_ context.Context, filename string, data []byte) (*driven.FormatResult, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open docx container: %v", domain.ErrConversionFailed, err)
	}

	body, err := readZipFile(reader, "word/document.xml")
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, fmt.Errorf("%w: missing word/document.xml", domain.ErrConversionFailed)
	}

	return &driven.FormatResult{
		Title:  ExtractCoreTitle(reader),
		Markup: renderDocumentXML(body),
	}, nil
}

// readZipFile returns the named entry's content, or nil when absent.
func readZipFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", domain.ErrConversionFailed, name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", domain.ErrConversionFailed, name, err)
		}
		return content, nil
	}
	return nil, nil
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Props struct {
		Style struct {
			Val string `xml:"val,attr"`
		} `xml:"pStyle"`
	} `xml:"pPr"`
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

func (p paragraph) text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		for _, t := range r.Text {
			b.WriteString(t.Content)
		}
	}
	return strings.TrimSpace(b.String())
}

// headingLevel maps a Word paragraph style to a heading level, 0 for body.
func headingLevel(style string) int {
	rest, ok := strings.CutPrefix(style, "Heading")
	if !ok || len(rest) != 1 {
		return 0
	}
	if rest[0] < '1' || rest[0] > '6' {
		return 0
	}
	return int(rest[0] - '0')
}

// renderDocumentXML converts the document XML into markup.
func renderDocumentXML(content []byte) string {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return ""
	}

	fragments := make([]string, 0, len(doc.Body.Paragraphs))
	for _, para := range doc.Body.Paragraphs {
		text := para.text()
		if text == "" {
			continue
		}
		if level := headingLevel(para.Props.Style.Val); level > 0 {
			fragments = append(fragments, markup.Heading(level, text))
		} else {
			fragments = append(fragments, markup.Paragraph(text))
		}
	}
	return markup.Join(fragments...)
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

// ExtractCoreTitle reads the document title from docProps/core.xml.
// Returns empty when the part or the title is absent. Shared by the other
// OOXML converters, whose packages carry the same core properties part.
func ExtractCoreTitle(reader *zip.Reader) string {
	content, err := readZipFile(reader, "docProps/core.xml")
	if err != nil || content == nil {
		return ""
	}
	var core coreXML
	if err := xml.Unmarshal(content, &core); err != nil {
		return ""
	}
	return strings.TrimSpace(core.Title)
}
