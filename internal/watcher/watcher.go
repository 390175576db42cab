// Package watcher observes an inbox directory and imports archives that
// land there. A file is picked up only after its size stops changing, so
// partially copied archives are never extracted.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
	"github.com/forlandeivan/search-engine-sub011/internal/logger"
)

// DefaultSettleInterval is how long a file's size must stay unchanged
// before it is picked up.
const DefaultSettleInterval = 2 * time.Second

// ImportFunc is called for each settled archive.
type ImportFunc func(ctx context.Context, archivePath string) error

// Watcher watches one inbox directory.
type Watcher struct {
	dir      string
	importFn ImportFunc

	settleInterval time.Duration
}

// Option configures the watcher.
type Option func(*Watcher)

// WithSettleInterval sets how long a file's size must stay unchanged
// before it is imported.
func WithSettleInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settleInterval = d
		}
	}
}

// New creates a watcher for the given inbox directory.
func New(dir string, importFn ImportFunc, opts ...Option) *Watcher {
	w := &Watcher{
		dir:            dir,
		importFn:       importFn,
		settleInterval: DefaultSettleInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the inbox until the context is canceled. Archives already
// present at startup are imported first.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("creating inbox directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fs watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	logger.Info("watching %s for archives", w.dir)

	// Catch up on files dropped before the watch started.
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("reading inbox directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.process(ctx, filepath.Join(w.dir, entry.Name()))
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if path := w.handleFsEvent(event); path != "" {
				w.process(ctx, path)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		}
	}
}

// handleFsEvent returns the archive path an event refers to, or "" when the
// event should be ignored.
func (w *Watcher) handleFsEvent(event fsnotify.Event) string {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return ""
	}

	name := filepath.Base(event.Name)
	if len(name) > 0 && name[0] == '.' {
		return ""
	}

	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return ""
	}

	if domain.DetectContainer(name, nil) == domain.ContainerUnknown {
		logger.Debug("ignoring non-archive file %s", name)
		return ""
	}
	return event.Name
}

// process waits for the archive to settle, imports it, and files it away
// under processed/ or failed/.
func (w *Watcher) process(ctx context.Context, path string) {
	if domain.DetectContainer(filepath.Base(path), nil) == domain.ContainerUnknown {
		return
	}

	if err := w.waitForSettle(ctx, path); err != nil {
		logger.Warn("archive %s never settled: %v", filepath.Base(path), err)
		return
	}

	logger.Section(fmt.Sprintf("importing %s", filepath.Base(path)))
	if err := w.importFn(ctx, path); err != nil {
		logger.Warn("import of %s failed: %v", filepath.Base(path), err)
		w.fileAway(path, "failed")
		return
	}
	w.fileAway(path, "processed")
}

// waitForSettle blocks until two consecutive size checks agree.
func (w *Watcher) waitForSettle(ctx context.Context, path string) error {
	var lastSize int64 = -1
	for {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() == lastSize {
			return nil
		}
		lastSize = info.Size()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.settleInterval):
		}
	}
}

// fileAway moves a handled archive into the named subdirectory.
func (w *Watcher) fileAway(path, subdir string) {
	dest := filepath.Join(w.dir, subdir)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		logger.Warn("cannot create %s: %v", dest, err)
		return
	}
	if err := os.Rename(path, filepath.Join(dest, filepath.Base(path))); err != nil {
		logger.Warn("cannot move %s: %v", filepath.Base(path), err)
	}
}
