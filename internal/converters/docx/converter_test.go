package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
)

func buildDocx(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

const documentXMLSample = `<?xml version="1.0"?>
<document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <body>
    <p><pPr><pStyle val="Heading1"/></pPr><r><t>Quarterly Report</t></r></p>
    <p><r><t>Revenue grew </t></r><r><t>modestly.</t></r></p>
    <p><r><t></t></r></p>
    <p><r><t>Costs were flat.</t></r></p>
  </body>
</document>`

func TestConvert(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"word/document.xml":  documentXMLSample,
		"docProps/core.xml":  `<coreProperties><title>Q3 Results</title></coreProperties>`,
		"[Content_Types].xml": `<Types/>`,
	})

	res, err := New().Convert(context.Background(), "report.docx", data)
	require.NoError(t, err)

	assert.Equal(t, "Q3 Results", res.Title)
	assert.Contains(t, res.Markup, "<h1>Quarterly Report</h1>")
	assert.Contains(t, res.Markup, "<p>Revenue grew modestly.</p>")
	assert.Contains(t, res.Markup, "<p>Costs were flat.</p>")
}

func TestConvert_NoCoreTitle(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"word/document.xml": documentXMLSample,
	})

	res, err := New().Convert(context.Background(), "report.docx", data)
	require.NoError(t, err)
	assert.Empty(t, res.Title)
}

func TestConvert_NotAZip(t *testing.T) {
	_, err := New().Convert(context.Background(), "report.docx", []byte("garbage"))
	assert.ErrorIs(t, err, domain.ErrConversionFailed)
}

func TestConvert_MissingDocumentPart(t *testing.T) {
	data := buildDocx(t, map[string]string{"other.xml": "<x/>"})
	_, err := New().Convert(context.Background(), "report.docx", data)
	assert.ErrorIs(t, err, domain.ErrConversionFailed)
}

func TestHeadingLevel(t *testing.T) {
	tests := []struct {
		style string
		want  int
	}{
		{"Heading1", 1},
		{"Heading3", 3},
		{"Heading6", 6},
		{"Heading7", 0},
		{"Normal", 0},
		{"", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, headingLevel(tt.style), tt.style)
	}
}
