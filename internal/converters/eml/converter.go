package eml

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/forlandeivan/search-engine-sub011/internal/converters/markup"
	"github.com/forlandeivan/search-engine-sub011/internal/converters/textenc"
	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driven"
)

// Ensure Converter implements the interface.
var _ driven.FormatConverter = (*Converter)(nil)

// Converter handles EML (email) documents.
type Converter struct{}

// New creates a new EML converter.
func New() *Converter {
	return &Converter{}
}

// Formats returns the formats this converter handles.
func (c *Converter) Formats() []domain.DocumentFormat {
	return []domain.DocumentFormat{domain.FormatEML}
}

// Convert renders the message as a header list followed by the body text.
// Plain-text parts are preferred over HTML ones in multipart messages.
func (c *Converter) Convert(_ context.Context, filename string, data []byte) (*driven.FormatResult, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: parse message: %v", domain.ErrConversionFailed, err)
	}

	subject := decodeHeader(msg.Header.Get("Subject"))
	from := decodeHeader(msg.Header.Get("From"))
	to := decodeHeader(msg.Header.Get("To"))
	date := msg.Header.Get("Date")

	body, err := extractBody(msg)
	if err != nil {
		return nil, err
	}

	var headers []string
	if from != "" {
		headers = append(headers, "From: "+from)
	}
	if to != "" {
		headers = append(headers, "To: "+to)
	}
	if date != "" {
		headers = append(headers, "Date: "+date)
	}
	if subject != "" {
		headers = append(headers, "Subject: "+subject)
	}

	// The subject doubles as the document's top-level heading.
	var heading string
	if subject != "" {
		heading = markup.Heading(1, subject)
	}

	return &driven.FormatResult{
		Title:  subject,
		Markup: markup.Join(heading, markup.List(headers), markup.Paragraphs(body)),
	}, nil
}

// decodeHeader decodes RFC 2047 encoded headers.
func decodeHeader(header string) string {
	if header == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(header)
	if err != nil {
		return header
	}
	return decoded
}

// extractBody extracts the text content from an email message.
func extractBody(msg *mail.Message) (string, error) {
	contentType := msg.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}

	body := decodeTransferEncoding(msg.Body, msg.Header.Get("Content-Transfer-Encoding"))

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		content, readErr := io.ReadAll(body)
		if readErr != nil {
			return "", fmt.Errorf("%w: read body: %v", domain.ErrConversionFailed, readErr)
		}
		return textenc.Decode(content), nil
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		return extractMultipartBody(body, params["boundary"])
	}

	content, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", domain.ErrConversionFailed, err)
	}
	if mediaType == "text/html" {
		return stripHTMLTags(textenc.Decode(content)), nil
	}
	return textenc.Decode(content), nil
}

// decodeTransferEncoding unwraps quoted-printable bodies. Base64 bodies are
// attachments in practice and are left to the multipart walk.
func decodeTransferEncoding(r io.Reader, encoding string) io.Reader {
	if strings.EqualFold(strings.TrimSpace(encoding), "quoted-printable") {
		return quotedprintable.NewReader(r)
	}
	return r
}

// extractMultipartBody extracts text from multipart messages, preferring
// plain text parts over HTML ones.
func extractMultipartBody(r io.Reader, boundary string) (string, error) {
	if boundary == "" {
		return "", nil
	}

	mr := multipart.NewReader(r, boundary)
	var textParts []string
	var htmlParts []string

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		mediaType, params, parseErr := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if parseErr != nil {
			mediaType = "application/octet-stream"
		}

		content, readErr := io.ReadAll(decodeTransferEncoding(part, part.Header.Get("Content-Transfer-Encoding")))
		part.Close()
		if readErr != nil {
			continue
		}

		switch {
		case mediaType == "text/plain":
			textParts = append(textParts, textenc.Decode(content))
		case mediaType == "text/html":
			htmlParts = append(htmlParts, stripHTMLTags(textenc.Decode(content)))
		case strings.HasPrefix(mediaType, "multipart/"):
			nested, nestedErr := extractMultipartBody(bytes.NewReader(content), params["boundary"])
			if nestedErr == nil && nested != "" {
				textParts = append(textParts, nested)
			}
		}
	}

	if len(textParts) > 0 {
		return strings.Join(textParts, "\n"), nil
	}
	if len(htmlParts) > 0 {
		return strings.Join(htmlParts, "\n"), nil
	}
	return "", nil
}

// stripHTMLTags removes HTML tags for basic text extraction.
func stripHTMLTags(html string) string {
	var result strings.Builder
	inTag := false

	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			result.WriteRune(r)
		}
	}

	lines := strings.Split(result.String(), "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
