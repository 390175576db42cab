package xlsx

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

// Converter handles XLSX workbooks.
type Converter struct{}

// New creates a new XLSX converter.
func New() *Converter {
	return &Converter{}
}

// Formats returns the formats this converter handles.
func (c *Converter) Formats() []domain.DocumentFormat {
	return []domain.DocumentFormat{domain.FormatXlsx}
}

var sheetPattern = regexp.MustCompile(`^xl/worksheets/sheet(\d+)\.xml$`)

// Convert renders each worksheet as a table, first row as the header.
func (c *Converter) Convert(_ context.Context, filename string, data []byte) (*driven.FormatResult, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open xlsx container: %v", domain.ErrConversionFailed, err)
	}

	shared, err := readSharedStrings(reader)
	if err != nil {
		return nil, err
	}

	type sheet struct {
		number int
		file   *zip.File
	}
	var sheets []sheet
	for _, file := range reader.File {
		m := sheetPattern.FindStringSubmatch(file.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		sheets = append(sheets, sheet{number: n, file: file})
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no worksheets found", domain.ErrConversionFailed)
	}
	sort.Slice(sheets, func(i, j int) bool { return sheets[i].number < sheets[j].number })

	var fragments []string
	for _, s := range sheets {
		rc, err := s.file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: read sheet %d: %v", domain.ErrConversionFailed, s.number, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read sheet %d: %v", domain.ErrConversionFailed, s.number, err)
		}

		rows := extractRows(content, shared)
		if len(rows) == 0 {
			continue
		}
		if len(sheets) > 1 {
			fragments = append(fragments, markup.Heading(2, "Sheet "+strconv.Itoa(s.number)))
		}
		fragments = append(fragments, markup.Table(rows, true))
	}

	return &driven.FormatResult{
		Title:  docx.ExtractCoreTitle(reader),
		Markup: markup.Join(fragments...),
	}, nil
}

// sstXML represents xl/sharedStrings.xml. Rich-text strings concatenate
// their run fragments.
type sstXML struct {
	Items []struct {
		Text string   `xml:"t"`
		Runs []string `xml:"r>t"`
	} `xml:"si"`
}

func readSharedStrings(reader *zip.Reader) ([]string, error) {
	for _, file := range reader.File {
		if file.Name != "xl/sharedStrings.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: read shared strings: %v", domain.ErrConversionFailed, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read shared strings: %v", domain.ErrConversionFailed, err)
		}

		var sst sstXML
		if err := xml.Unmarshal(content, &sst); err != nil {
			return nil, fmt.Errorf("%w: parse shared strings: %v", domain.ErrConversionFailed, err)
		}
		out := make([]string, len(sst.Items))
		for i, item := range sst.Items {
			if item.Text != "" {
				out[i] = item.Text
				continue
			}
			out[i] = strings.Join(item.Runs, "")
		}
		return out, nil
	}
	return nil, nil
}

// sheetXML represents the cell grid of one worksheet.
type sheetXML struct {
	Rows []struct {
		Cells []struct {
			Type  string `xml:"t,attr"`
			Value string `xml:"v"`
			Inline struct {
				Text string `xml:"t"`
			} `xml:"is"`
		} `xml:"c"`
	} `xml:"sheetData>row"`
}

func extractRows(content []byte, shared []string) [][]string {
	var s sheetXML
	if err := xml.Unmarshal(content, &s); err != nil {
		return nil
	}
	var rows [][]string
	for _, row := range s.Rows {
		cells := make([]string, 0, len(row.Cells))
		empty := true
		for _, cell := range row.Cells {
			v := cell.Value
			switch cell.Type {
			case "s":
				idx, err := strconv.Atoi(cell.Value)
				if err == nil && idx >= 0 && idx < len(shared) {
					v = shared[idx]
				}
			case "inlineStr":
				v = cell.Inline.Text
			}
			if strings.TrimSpace(v) != "" {
				empty = false
			}
			cells = append(cells, v)
		}
		if !empty {
			rows = append(rows, cells)
		}
	}
	return rows
}
