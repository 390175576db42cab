// Package driving defines the interfaces the application exposes to its
// callers: document conversion, chunking, archive import and indexing job
// control. The CLI and the inbox watcher drive the core through these.
package driving
