package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forlandeivan/search-engine-sub011/internal/adapters/driven/storage/memory"
	"github.com/forlandeivan/search-engine-sub011/internal/converters"
	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driven"
)

func writeZip(t *testing.T, entries map[string][]byte) string {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "base.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func errorCodes(summary domain.ImportSummary) map[domain.ImportErrorCode]int {
	codes := make(map[domain.ImportErrorCode]int)
	for _, e := range summary.Errors {
		codes[e.Code]++
	}
	return codes
}

func TestImportArchive(t *testing.T) {
	path := writeZip(t, map[string][]byte{
		"notes/readme.md": []byte("# Readme\n\nWelcome to the base."),
		"../escape.md":    []byte("# Escaped"),
		"tool.exe":        []byte("MZ\x00\x00"),
	})

	store := memory.NewDocumentStore()
	svc := NewImportService(converters.NewDefault(nil), nil, store)

	res, err := svc.ImportArchive(context.Background(), "base-1", path)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Summary.TotalFiles)
	assert.Equal(t, 1, res.Summary.ImportedFiles)
	assert.Equal(t, 2, res.Summary.SkippedFiles)
	assert.Len(t, res.Summary.Errors, 2)

	codes := errorCodes(res.Summary)
	assert.Equal(t, 1, codes[domain.ImportErrInvalidPath])
	assert.Equal(t, 1, codes[domain.ImportErrUnsupportedType])

	// One folder with one document leaf under it.
	require.Len(t, res.Tree, 1)
	folder := res.Tree[0]
	assert.Equal(t, "notes", folder.Title)
	assert.Equal(t, domain.NodeFolder, folder.Kind)
	require.Len(t, folder.Children, 1)
	leaf := folder.Children[0]
	assert.Equal(t, domain.NodeDocument, leaf.Kind)
	assert.Equal(t, "Readme", leaf.Title)

	// The document was converted and persisted.
	require.Len(t, res.Documents, 1)
	doc := res.Documents[leaf.DocumentID]
	require.NotNil(t, doc)
	assert.Equal(t, "base-1", doc.BaseID)
	assert.Equal(t, "notes/readme.md", doc.SourcePath)
	assert.Contains(t, doc.Markup, "<h1>Readme</h1>")

	stored, err := store.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Markup, stored.Markup)
}

func TestImportArchive_EmptyDirectoriesBecomeFolders(t *testing.T) {
	path := writeZip(t, map[string][]byte{
		"empty/nested/": nil,
		"docs/guide.md": []byte("# Guide\n\nbody"),
	})

	svc := NewImportService(converters.NewDefault(nil), nil, memory.NewDocumentStore())
	res, err := svc.ImportArchive(context.Background(), "base-1", path)
	require.NoError(t, err)

	titles := make(map[string]domain.TreeNode, len(res.Tree))
	for _, node := range res.Tree {
		titles[node.Title] = node
	}
	require.Contains(t, titles, "docs")
	require.Contains(t, titles, "empty")
	empty := titles["empty"]
	assert.Equal(t, domain.NodeFolder, empty.Kind)
	require.Len(t, empty.Children, 1)
	assert.Equal(t, "nested", empty.Children[0].Title)
	assert.Equal(t, domain.NodeFolder, empty.Children[0].Kind)
}

func TestImportArchive_DuplicatePaths(t *testing.T) {
	// zip permits repeated entry names; only the first occurrence imports.
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, content := range []string{"first version", "second version"} {
		f, err := w.Create("doc.txt")
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	path := filepath.Join(t.TempDir(), "dup.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	svc := NewImportService(converters.NewDefault(nil), nil, nil)
	res, err := svc.ImportArchive(context.Background(), "base-1", path)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Summary.TotalFiles)
	assert.Equal(t, 1, res.Summary.ImportedFiles)
	codes := errorCodes(res.Summary)
	assert.Equal(t, 1, codes[domain.ImportErrDuplicatePath])

	for _, doc := range res.Documents {
		assert.Contains(t, doc.Markup, "first version")
	}
}

func TestImportArchive_EntryErrorsDoNotAbort(t *testing.T) {
	path := writeZip(t, map[string][]byte{
		"good.md":  []byte("# Good\n\nbody"),
		"fake.pdf": []byte("not really a pdf"),
		"blank.txt": []byte("   "),
	})

	svc := NewImportService(converters.NewDefault(nil), nil, nil)
	res, err := svc.ImportArchive(context.Background(), "base-1", path)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Summary.ImportedFiles)
	assert.Equal(t, 2, res.Summary.SkippedFiles)
	codes := errorCodes(res.Summary)
	assert.Equal(t, 1, codes[domain.ImportErrFailedConversion])
	assert.Equal(t, 1, codes[domain.ImportErrEmptyDocument])
}

type fakeBackend struct {
	entries []driven.ArchiveEntry
	err     error
	calls   int
}

func (f *fakeBackend) Extract(_ context.Context, _ string) ([]driven.ArchiveEntry, error) {
	f.calls++
	return f.entries, f.err
}

func TestImportArchive_BackendForNonZipContainers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base.tar.gz")
	require.NoError(t, os.WriteFile(path, []byte("\x1f\x8b..."), 0o644))

	backend := &fakeBackend{entries: []driven.ArchiveEntry{
		{Path: "guide.md", Data: []byte("# Guide\n\nfrom a tarball")},
	}}
	svc := NewImportService(converters.NewDefault(nil), backend, nil)

	res, err := svc.ImportArchive(context.Background(), "base-1", path)
	require.NoError(t, err)

	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, 1, res.Summary.ImportedFiles)
}

func TestImportArchive_DamagedZipRetriesBackend(t *testing.T) {
	// Valid extension and signature, but not a readable zip.
	path := filepath.Join(t.TempDir(), "broken.zip")
	require.NoError(t, os.WriteFile(path, []byte("PK\x03\x04 damaged beyond repair"), 0o644))

	backend := &fakeBackend{entries: []driven.ArchiveEntry{
		{Path: "salvaged.txt", Data: []byte("recovered content")},
	}}
	svc := NewImportService(converters.NewDefault(nil), backend, nil)

	res, err := svc.ImportArchive(context.Background(), "base-1", path)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, 1, res.Summary.ImportedFiles)
}

func TestImportArchive_Unreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.zip")
	require.NoError(t, os.WriteFile(path, []byte("PK\x03\x04 damaged"), 0o644))

	backend := &fakeBackend{err: errors.New("cannot parse archive")}
	svc := NewImportService(converters.NewDefault(nil), backend, nil)

	_, err := svc.ImportArchive(context.Background(), "base-1", path)
	assert.ErrorIs(t, err, domain.ErrArchiveUnreadable)
}

func TestImportArchive_MissingFile(t *testing.T) {
	svc := NewImportService(converters.NewDefault(nil), nil, nil)
	_, err := svc.ImportArchive(context.Background(), "base-1", filepath.Join(t.TempDir(), "absent.zip"))
	assert.ErrorIs(t, err, domain.ErrArchiveUnreadable)
}

func TestSanitizeEntryPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"simple", "docs/readme.md", "docs/readme.md", false},
		{"backslashes normalized", `docs\readme.md`, "docs/readme.md", false},
		{"current dir segments cleaned", "./docs/./readme.md", "docs/readme.md", false},
		{"parent traversal", "../etc/passwd", "", true},
		{"nested traversal", "docs/../../escape.md", "", true},
		{"absolute", "/etc/passwd", "", true},
		{"drive letter", `C:\Users\file.txt`, "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sanitizeEntryPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
