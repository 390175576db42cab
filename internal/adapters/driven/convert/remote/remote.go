// Package remote provides a document conversion adapter backed by an HTTP
// conversion service. Legacy binary formats that cannot be parsed locally
// are shipped to the service as a multipart upload; the response body is
// the converted HTML.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driven"
)

// Ensure Converter implements the interface.
var _ driven.RemoteConverter = (*Converter)(nil)

// Default configuration values.
const (
	DefaultTimeout = 60 * time.Second

	// maxResponseSize caps the converted HTML we accept back.
	maxResponseSize = 32 << 20
)

// Config holds configuration for the remote conversion service.
type Config struct {
	// BaseURL is the conversion service base URL, e.g. http://localhost:3000.
	BaseURL string

	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration
}

// Converter converts documents through a remote HTTP service.
type Converter struct {
	client  *http.Client
	baseURL string
}

// NewConverter creates a remote converter client.
func NewConverter(cfg Config) *Converter {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Converter{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
	}
}

// ConvertToHTML uploads the document and returns the converted HTML.
func (c *Converter) ConvertToHTML(ctx context.Context, filename string, data []byte) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("remote converter: no base URL configured")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/convert/html",
		&body,
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err != nil {
			return "", fmt.Errorf("conversion service error (status %d): failed to read response", resp.StatusCode)
		}
		return "", fmt.Errorf("conversion service error (status %d): %s", resp.StatusCode, string(msg))
	}

	html, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if len(html) == 0 {
		return "", fmt.Errorf("conversion service returned an empty document")
	}
	return string(html), nil
}
