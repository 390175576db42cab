package driven

import "context"

// RemoteConverter converts legacy binary documents that local extraction
// cannot read, by shipping the raw bytes to an external conversion service.
type RemoteConverter interface {
	// ConvertToHTML returns an HTML rendering of the document. A service
	// outage is reported as a permanent conversion failure for the document,
	// not retried by callers.
	ConvertToHTML(ctx context.Context, filename string, data []byte) (string, error)
}
