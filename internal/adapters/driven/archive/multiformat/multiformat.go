// Package multiformat extracts archive entries from tar, tar.gz, tar.bz2,
// rar and 7z containers. Plain zip is handled upstream with archive/zip;
// this backend covers everything else, and damaged zips as a second try.
package multiformat

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/mholt/archives"

	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driven"
	"github.com/forlandeivan/search-engine-sub011/internal/logger"
)

// Ensure Backend implements the interface.
var _ driven.ArchiveBackend = (*Backend)(nil)

// maxEntrySize caps a single decompressed entry. Documents bigger than this
// are almost certainly not text and would only bloat memory.
const maxEntrySize = 64 << 20

// Backend extracts archives using format auto-detection.
type Backend struct{}

// New creates a multiformat archive backend.
func New() *Backend {
	return &Backend{}
}

// Extract reads every regular file out of the archive at path. Entries are
// returned in archive order with their full decompressed contents.
func (b *Backend) Extract(ctx context.Context, archivePath string) ([]driven.ArchiveEntry, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrArchiveUnreadable, err)
	}
	defer f.Close()

	format, stream, err := archives.Identify(ctx, path.Base(archivePath), f)
	if err != nil {
		return nil, fmt.Errorf("%w: unrecognized container: %v", domain.ErrArchiveUnreadable, err)
	}

	extractor, ok := format.(archives.Extractor)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an archive", domain.ErrArchiveUnreadable, format.Extension())
	}

	var entries []driven.ArchiveEntry
	handler := func(ctx context.Context, info archives.FileInfo) error {
		entry := driven.ArchiveEntry{Path: info.NameInArchive, Dir: info.IsDir()}
		if info.IsDir() {
			entries = append(entries, entry)
			return nil
		}
		if info.Size() > maxEntrySize {
			logger.Warn("skipping oversized archive entry %s (%d bytes)", info.NameInArchive, info.Size())
			return nil
		}
		rc, err := info.Open()
		if err != nil {
			logger.Warn("cannot open archive entry %s: %v", info.NameInArchive, err)
			return nil
		}
		defer rc.Close()

		data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize))
		if err != nil {
			logger.Warn("cannot read archive entry %s: %v", info.NameInArchive, err)
			return nil
		}
		entry.Data = data
		entries = append(entries, entry)
		return nil
	}

	if err := extractor.Extract(ctx, stream, handler); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrArchiveUnreadable, err)
	}
	logger.Debug("extracted %d entries from %s container", len(entries), format.Extension())
	return entries, nil
}
