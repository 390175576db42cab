package services

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driven"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driving"
	"github.com/forlandeivan/search-engine-sub011/internal/logger"
)

// Ensure ImportService implements the interface.
var _ driving.Importer = (*ImportService)(nil)

// DefaultImportConcurrency bounds parallel entry conversions.
const DefaultImportConcurrency = 4

// ImportService ingests document archives into a knowledge base.
type ImportService struct {
	converter   driving.Converter
	backend     driven.ArchiveBackend
	store       driven.DocumentStore
	concurrency int
	newID       func() string
	now         func() time.Time
}

// ImportOption configures the import service.
type ImportOption func(*ImportService)

// WithImportConcurrency sets the parallel conversion limit.
func WithImportConcurrency(n int) ImportOption {
	return func(s *ImportService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithImportClock overrides the time source. Useful for testing.
func WithImportClock(now func() time.Time) ImportOption {
	return func(s *ImportService) {
		s.now = now
	}
}

// NewImportService creates an import service. store may be nil when callers
// only want the in-memory result.
func NewImportService(converter driving.Converter, backend driven.ArchiveBackend, store driven.DocumentStore, opts ...ImportOption) *ImportService {
	s := &ImportService{
		converter:   converter,
		backend:     backend,
		store:       store,
		concurrency: DefaultImportConcurrency,
		newID:       uuid.NewString,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// entryOutcome carries one entry's conversion result across the parallel
// phase. Exactly one of result and importErr is set.
type entryOutcome struct {
	result    *driving.ConvertResult
	importErr *domain.ImportError
}

// ImportArchive extracts the archive, converts every supported entry and
// arranges the documents into a folder tree mirroring the archive layout.
// Entry-level failures are recorded in the summary and never abort the run.
func (s *ImportService) ImportArchive(ctx context.Context, baseID, archivePath string) (*driving.ImportResult, error) {
	startedAt := s.now()
	logger.Section("import " + path.Base(archivePath))

	entries, err := s.readEntries(ctx, archivePath)
	if err != nil {
		return nil, err
	}

	summary := domain.ImportSummary{
		ArchiveName: path.Base(archivePath),
		StartedAt:   startedAt,
	}

	// Sequential screening keeps first-wins dedupe deterministic.
	type candidate struct {
		entry driven.ArchiveEntry
		clean string
	}
	var candidates []candidate
	var dirPaths []string
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.Dir {
			// Explicit directory entries become folder nodes even when
			// nothing inside them converts.
			if clean, err := sanitizeEntryPath(entry.Path); err == nil && clean != "" {
				dirPaths = append(dirPaths, clean)
			}
			continue
		}
		summary.TotalFiles++

		clean, err := sanitizeEntryPath(entry.Path)
		if err != nil {
			summary.Errors = append(summary.Errors, domain.ImportError{
				Path:    entry.Path,
				Message: err.Error(),
				Code:    domain.ImportErrInvalidPath,
			})
			continue
		}

		key := strings.ToLower(clean)
		if seen[key] {
			summary.Errors = append(summary.Errors, domain.ImportError{
				Path:    entry.Path,
				Message: "duplicate entry path",
				Code:    domain.ImportErrDuplicatePath,
			})
			continue
		}
		seen[key] = true

		if !s.converter.Supported(clean) {
			summary.Errors = append(summary.Errors, domain.ImportError{
				Path:    entry.Path,
				Message: "unsupported file type",
				Code:    domain.ImportErrUnsupportedType,
			})
			continue
		}

		candidates = append(candidates, candidate{entry: entry, clean: clean})
	}

	// Parallel conversion; outcomes land in entry order.
	outcomes := make([]entryOutcome, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, cand := range candidates {
		g.Go(func() error {
			res, err := s.converter.Convert(gctx, cand.clean, cand.entry.Data)
			if err != nil {
				outcomes[i] = entryOutcome{importErr: &domain.ImportError{
					Path:    cand.entry.Path,
					Message: err.Error(),
					Code:    classifyConvertError(err),
				}}
				return nil
			}
			outcomes[i] = entryOutcome{result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Sequential assembly keeps folder creation order stable.
	arena := domain.NewFolderArena(s.newID)
	for _, dir := range dirPaths {
		arena.EnsureFolder(strings.Split(dir, "/"))
	}
	documents := make(map[string]*domain.KnowledgeDocument, len(candidates))

	for i, cand := range candidates {
		out := outcomes[i]
		if out.importErr != nil {
			summary.Errors = append(summary.Errors, *out.importErr)
			continue
		}

		segments := strings.Split(cand.clean, "/")
		folder := arena.EnsureFolder(segments[:len(segments)-1])

		doc := &domain.KnowledgeDocument{
			ID:         s.newID(),
			BaseID:     baseID,
			Title:      out.result.Title,
			Markup:     out.result.Markup,
			SourcePath: cand.clean,
			UpdatedAt:  s.now(),
		}
		documents[doc.ID] = doc
		arena.AttachDocument(folder, domain.TreeNode{
			ID:         s.newID(),
			Title:      doc.Title,
			Kind:       domain.NodeDocument,
			DocumentID: doc.ID,
		})
		summary.ImportedFiles++

		if s.store != nil {
			if err := s.store.SaveDocument(ctx, doc); err != nil {
				return nil, fmt.Errorf("persist document %s: %w", cand.clean, err)
			}
		}
	}

	summary.SkippedFiles = len(summary.Errors)
	summary.FinishedAt = s.now()
	logger.Info("imported %d of %d files, %d skipped",
		summary.ImportedFiles, summary.TotalFiles, summary.SkippedFiles)

	return &driving.ImportResult{
		Tree:      arena.Tree(),
		Documents: documents,
		Summary:   summary,
	}, nil
}

// readEntries loads the archive into memory. ZIP archives use the direct
// reader; other containers and damaged ZIP files go through the backend.
func (s *ImportService) readEntries(ctx context.Context, archivePath string) ([]driven.ArchiveEntry, error) {
	head := make([]byte, 4)
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrArchiveUnreadable, err)
	}
	n, _ := io.ReadFull(f, head)
	f.Close()

	kind := domain.DetectContainer(archivePath, head[:n])
	if kind == domain.ContainerUnknown {
		return nil, fmt.Errorf("%w: unrecognized container %s", domain.ErrArchiveUnreadable, path.Base(archivePath))
	}

	if kind == domain.ContainerZip {
		entries, err := readZipEntries(archivePath)
		if err == nil {
			return entries, nil
		}
		logger.Warn("zip reader failed on %s, retrying with extraction backend: %v", path.Base(archivePath), err)
	}

	if s.backend == nil {
		return nil, fmt.Errorf("%w: no backend for %s container", domain.ErrArchiveUnreadable, kind)
	}
	entries, err := s.backend.Extract(ctx, archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrArchiveUnreadable, err)
	}
	return entries, nil
}

func readZipEntries(archivePath string) ([]driven.ArchiveEntry, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	entries := make([]driven.ArchiveEntry, 0, len(r.File))
	for _, file := range r.File {
		if file.FileInfo().IsDir() {
			entries = append(entries, driven.ArchiveEntry{Path: file.Name, Dir: true})
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		entries = append(entries, driven.ArchiveEntry{Path: file.Name, Data: data})
	}
	return entries, nil
}

// sanitizeEntryPath normalizes an archive entry path and rejects anything
// that could escape the archive root.
func sanitizeEntryPath(p string) (string, error) {
	clean := strings.ReplaceAll(p, "\\", "/")

	if strings.HasPrefix(clean, "/") {
		return "", errors.New("absolute entry path")
	}
	if len(clean) >= 2 && clean[1] == ':' &&
		(clean[0] >= 'a' && clean[0] <= 'z' || clean[0] >= 'A' && clean[0] <= 'Z') {
		return "", errors.New("drive-letter entry path")
	}
	for _, seg := range strings.Split(clean, "/") {
		if seg == ".." {
			return "", errors.New("parent traversal in entry path")
		}
	}

	clean = path.Clean(clean)
	if clean == "." || clean == "" {
		return "", errors.New("empty entry path")
	}
	return clean, nil
}

// classifyConvertError maps a conversion failure to its entry error code.
func classifyConvertError(err error) domain.ImportErrorCode {
	switch {
	case errors.Is(err, domain.ErrEmptyDocument):
		return domain.ImportErrEmptyDocument
	case errors.Is(err, domain.ErrUnsupportedType):
		return domain.ImportErrUnsupportedType
	default:
		return domain.ImportErrFailedConversion
	}
}
