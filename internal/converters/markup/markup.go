// Package markup builds the normalized HTML fragments the converters emit.
package markup

import (
	"html"
	"path/filepath"
	"strings"
	"unicode"
)

// Escape escapes text for safe embedding in markup.
func Escape(s string) string {
	return html.EscapeString(s)
}

// Heading renders a heading element. Levels outside 1..6 are clamped.
func Heading(level int, text string) string {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	tag := "h" + string(rune('0'+level))
	return "<" + tag + ">" + Escape(strings.TrimSpace(text)) + "</" + tag + ">"
}

// Paragraph renders one paragraph element.
func Paragraph(text string) string {
	return "<p>" + Escape(strings.TrimSpace(text)) + "</p>"
}

// Paragraphs splits plain text on blank lines and renders each block as a
// paragraph. Whitespace-only blocks are dropped.
func Paragraphs(text string) string {
	blocks := strings.Split(text, "\n\n")
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		parts = append(parts, Paragraph(b))
	}
	return strings.Join(parts, "\n")
}

// Table renders rows as a table. When header is set the first row becomes
// the header row.
func Table(rows [][]string, header bool) string {
	if len(rows) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<table>")
	for i, row := range rows {
		cell := "td"
		if header && i == 0 {
			cell = "th"
		}
		b.WriteString("<tr>")
		for _, col := range row {
			b.WriteString("<" + cell + ">")
			b.WriteString(Escape(strings.TrimSpace(col)))
			b.WriteString("</" + cell + ">")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	return b.String()
}

// List renders items as an unordered list. Empty items are dropped.
func List(items []string) string {
	kept := make([]string, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it) != "" {
			kept = append(kept, it)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<ul>")
	for _, it := range kept {
		b.WriteString("<li>" + Escape(strings.TrimSpace(it)) + "</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

// Join concatenates non-empty fragments with newlines.
func Join(fragments ...string) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, "\n")
}

// TitleFromFilename derives a display title from a file name: the extension
// is dropped, underscores and dashes become spaces, and the first letter is
// upper-cased.
func TitleFromFilename(name string) string {
	base := filepath.Base(name)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	runes := []rune(base)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
