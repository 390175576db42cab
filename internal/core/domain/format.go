package domain

import (
	"bytes"
	"path/filepath"
	"strings"
)

// DocumentFormat identifies a recognized source document format.
// The set is closed: format dispatch is an exhaustive switch over these
// values with FormatUnsupported as the explicit rejection arm.
type DocumentFormat int

const (
	// FormatUnsupported is the rejection arm for unrecognized extensions.
	FormatUnsupported DocumentFormat = iota

	// FormatPDF is a PDF document.
	FormatPDF

	// FormatDocx is an Office Open XML word-processing document.
	FormatDocx

	// FormatPptx is an Office Open XML slide deck.
	FormatPptx

	// FormatXlsx is an Office Open XML spreadsheet.
	FormatXlsx

	// FormatDoc is the legacy binary word-processor format.
	FormatDoc

	// FormatMarkdown is a Markdown text document.
	FormatMarkdown

	// FormatPlainText is unstructured plain text.
	FormatPlainText

	// FormatCSV is comma-separated tabular text.
	FormatCSV

	// FormatEML is an RFC 822 email message.
	FormatEML

	// FormatHTML is an HTML document.
	FormatHTML
)

// String returns the short name of the format.
func (f DocumentFormat) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatDocx:
		return "docx"
	case FormatPptx:
		return "pptx"
	case FormatXlsx:
		return "xlsx"
	case FormatDoc:
		return "doc"
	case FormatMarkdown:
		return "markdown"
	case FormatPlainText:
		return "plaintext"
	case FormatCSV:
		return "csv"
	case FormatEML:
		return "eml"
	case FormatHTML:
		return "html"
	case FormatUnsupported:
		return "unsupported"
	default:
		return "unsupported"
	}
}

// formatByExtension maps lower-case file extensions to formats.
var formatByExtension = map[string]DocumentFormat{
	".pdf":      FormatPDF,
	".docx":     FormatDocx,
	".pptx":     FormatPptx,
	".xlsx":     FormatXlsx,
	".doc":      FormatDoc,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".txt":      FormatPlainText,
	".text":     FormatPlainText,
	".log":      FormatPlainText,
	".csv":      FormatCSV,
	".eml":      FormatEML,
	".html":     FormatHTML,
	".htm":      FormatHTML,
}

// FormatForFilename resolves the document format from the file extension.
// The extension is authoritative for dispatch; content signatures are
// cross-checked separately via CheckSignature.
func FormatForFilename(name string) DocumentFormat {
	ext := strings.ToLower(filepath.Ext(name))
	if f, ok := formatByExtension[ext]; ok {
		return f
	}
	return FormatUnsupported
}

// SupportedExtensions returns the extensions the converter accepts,
// used as the importer's allow-list.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(formatByExtension))
	for ext := range formatByExtension {
		exts = append(exts, ext)
	}
	return exts
}

var (
	pdfSignature = []byte("%PDF")
	zipSignature = []byte{'P', 'K', 0x03, 0x04}
)

// HasZipSignature reports whether the buffer starts with the ZIP
// local-file-header signature.
func HasZipSignature(b []byte) bool {
	return bytes.HasPrefix(b, zipSignature)
}

// CheckSignature cross-checks the buffer content against the signature the
// format requires. Formats without a binary signature always pass.
func (f DocumentFormat) CheckSignature(b []byte) error {
	switch f {
	case FormatPDF:
		if !bytes.HasPrefix(b, pdfSignature) {
			return ErrFormatMismatch
		}
	case FormatDocx, FormatPptx, FormatXlsx:
		if !HasZipSignature(b) {
			return ErrFormatMismatch
		}
	case FormatDoc, FormatMarkdown, FormatPlainText, FormatCSV,
		FormatEML, FormatHTML, FormatUnsupported:
		// No fixed signature.
	}
	return nil
}
