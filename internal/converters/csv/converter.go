package csv

import (
	"context"
	gocsv "encoding/csv"
	"fmt"
	"strings"

	"github.com/forlandeivan/search-engine-sub011/internal/converters/markup"
	"github.com/forlandeivan/search-engine-sub011/internal/converters/textenc"
	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driven"
)

// Ensure Converter implements the interface.
var _ driven.FormatConverter = (*Converter)(nil)

// Converter handles CSV files.
type Converter struct{}

// New creates a new CSV converter.
func New() *Converter {
	return &Converter{}
}

// Formats returns the formats this converter handles.
func (c *Converter) Formats() []domain.DocumentFormat {
	return []domain.DocumentFormat{domain.FormatCSV}
}

// Convert renders the rows as a table with the first row as the header.
// Ragged rows are tolerated; a semicolon delimiter is detected from the
// first line.
func (c *Converter) Convert(_ context.Context, filename string, data []byte) (*driven.FormatResult, error) {
	text := textenc.Decode(data)

	reader := gocsv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if delimiter(text) == ';' {
		reader.Comma = ';'
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse csv: %v", domain.ErrConversionFailed, err)
	}
	if len(rows) == 0 {
		return &driven.FormatResult{}, nil
	}

	return &driven.FormatResult{
		Markup: markup.Table(rows, true),
	}, nil
}

// delimiter picks between comma and semicolon by counting occurrences on
// the first line.
func delimiter(text string) rune {
	line, _, _ := strings.Cut(text, "\n")
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}
