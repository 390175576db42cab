package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParagraphs(t *testing.T) {
	got := Paragraphs("first block\n\nsecond block\n\n\n\n")
	assert.Equal(t, "<p>first block</p>\n<p>second block</p>", got)
}

func TestParagraphs_Escapes(t *testing.T) {
	got := Paragraphs("a < b & c")
	assert.Equal(t, "<p>a &lt; b &amp; c</p>", got)
}

func TestHeading(t *testing.T) {
	assert.Equal(t, "<h1>Title</h1>", Heading(1, "Title"))
	assert.Equal(t, "<h6>Deep</h6>", Heading(9, "Deep"))
	assert.Equal(t, "<h1>Shallow</h1>", Heading(0, "Shallow"))
}

func TestTable(t *testing.T) {
	got := Table([][]string{{"name", "age"}, {"ada", "36"}}, true)
	assert.Equal(t, "<table><tr><th>name</th><th>age</th></tr><tr><td>ada</td><td>36</td></tr></table>", got)
}

func TestList(t *testing.T) {
	assert.Equal(t, "<ul><li>one</li><li>two</li></ul>", List([]string{"one", "", "two"}))
	assert.Equal(t, "", List([]string{"", "  "}))
}

func TestTitleFromFilename(t *testing.T) {
	tests := []struct {
		name string
		file string
		want string
	}{
		{"underscores", "annual_report_2024.pdf", "Annual report 2024"},
		{"dashes", "meeting-notes.md", "Meeting notes"},
		{"nested path", "docs/guides/intro.txt", "Intro"},
		{"no extension", "README", "README"},
		{"cyrillic", "отчёт.txt", "Отчёт"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleFromFilename(tt.file))
		})
	}
}
