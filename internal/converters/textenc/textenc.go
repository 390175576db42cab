// Package textenc decodes raw text bytes into UTF-8, handling the byte-order
// marks and legacy Cyrillic codepages that show up in real document archives.
package textenc

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode converts raw bytes to a UTF-8 string. Resolution order: byte-order
// mark, valid UTF-8 as-is, then the legacy codepage whose decoding scores
// best. Line endings are normalized to \n.
func Decode(data []byte) string {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return normalizeNewlines(string(data[len(bomUTF8):]))
	case bytes.HasPrefix(data, bomUTF16LE):
		return normalizeNewlines(decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), data[2:]))
	case bytes.HasPrefix(data, bomUTF16BE):
		return normalizeNewlines(decodeWith(unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), data[2:]))
	}

	// BOM-less UTF-16LE ASCII passes utf8.Valid because the interleaved
	// NULs are valid code points, so it must be detected first.
	if looksUTF16LE(data) {
		return normalizeNewlines(decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), data))
	}

	if utf8.Valid(data) {
		return normalizeNewlines(string(data))
	}

	best := ""
	bestScore := -1
	for _, enc := range []encoding.Encoding{charmap.Windows1251, charmap.KOI8R, charmap.ISO8859_1} {
		decoded := decodeWith(enc, data)
		if s := score(decoded); s > bestScore {
			best, bestScore = decoded, s
		}
	}
	return normalizeNewlines(best)
}

// looksUTF16LE reports whether the bytes read as BOM-less UTF-16LE text:
// even length and nearly every odd byte zero, the pattern Latin-script
// UTF-16LE produces.
func looksUTF16LE(data []byte) bool {
	if len(data) < 4 || len(data)%2 != 0 {
		return false
	}
	zeros := 0
	for i := 1; i < len(data); i += 2 {
		if data[i] == 0 {
			zeros++
		}
	}
	return zeros*10 >= (len(data)/2)*9
}

func decodeWith(enc encoding.Encoding, data []byte) string {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

// score counts letters and whitespace, penalizing control and replacement
// runes. Higher means a more plausible decoding.
func score(s string) int {
	n := 0
	for _, r := range s {
		switch {
		case r == utf8.RuneError:
			n -= 10
		case r < 0x20 && r != '\n' && r != '\r' && r != '\t':
			n -= 5
		case isLetterOrSpace(r):
			n++
		}
	}
	return n
}

func isLetterOrSpace(r rune) bool {
	if r == ' ' || r == '\n' || r == '\t' {
		return true
	}
	if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
		return true
	}
	// Cyrillic block.
	return r >= 0x0400 && r <= 0x04FF
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
