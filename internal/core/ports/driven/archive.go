package driven

import "context"

// ArchiveEntry is one file read out of an archive. Directories are reported
// with Dir set and empty Data.
type ArchiveEntry struct {
	// Path is the entry path as recorded in the archive, forward slashes.
	Path string

	// Dir marks a directory entry.
	Dir bool

	// Data is the full entry content.
	Data []byte
}

// ArchiveBackend extracts entries from container formats the direct ZIP
// reader does not handle (tar, tar.gz, 7z, rar), and serves as the retry
// path when the ZIP reader fails on a damaged archive.
type ArchiveBackend interface {
	// Extract reads every entry of the archive at path. Entry order follows
	// the archive's own order.
	Extract(ctx context.Context, path string) ([]ArchiveEntry, error)
}
